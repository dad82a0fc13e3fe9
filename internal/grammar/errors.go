package grammar

import (
	"errors"
	"fmt"
)

// ErrStructureDefinition is matched by every StructureDefinitionError.
var ErrStructureDefinition = errors.New("invalid structure definition")

// ErrUnknownTemplate is returned when no resource exists for a template id.
var ErrUnknownTemplate = errors.New("unknown template")

// StructureDefinitionError reports a missing or malformed structure-definition
// resource. It is fatal for the template: no partial grammar is produced.
type StructureDefinitionError struct {
	Template string
	Reason   string
	Err      error
}

func (e *StructureDefinitionError) Error() string {
	msg := fmt.Sprintf("structure definition %q: %s", e.Template, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructureDefinitionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStructureDefinition) hold for every instance.
func (e *StructureDefinitionError) Is(target error) bool {
	return target == ErrStructureDefinition
}

func definitionError(template string, err error, format string, args ...any) error {
	return &StructureDefinitionError{
		Template: template,
		Reason:   fmt.Sprintf(format, args...),
		Err:      err,
	}
}
