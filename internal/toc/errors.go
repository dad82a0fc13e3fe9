package toc

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrStructuralViolation = errors.New("structural violation")
	ErrCycle               = errors.New("cycle violation")
	ErrUnknownNode         = errors.New("unknown node")
	ErrDuplicateNode       = errors.New("duplicate node")
)

// StructuralViolation is returned when a placement breaks the nesting rules
// of the grammar. The tree is left unchanged.
type StructuralViolation struct {
	Op         string
	ID         string
	Type       string
	ParentID   string
	ParentType string
	Position   int
	Err        error
}

func (e *StructuralViolation) Error() string {
	where := "top level"
	if e.ParentID != "" {
		where = fmt.Sprintf("%s %q", e.ParentType, e.ParentID)
	}
	msg := fmt.Sprintf("%s %s %q at %s position %d: nesting not allowed", e.Op, e.Type, e.ID, where, e.Position)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructuralViolation) Unwrap() error        { return e.Err }
func (e *StructuralViolation) Is(target error) bool { return target == ErrStructuralViolation }

// CycleViolation is returned when a move would make a node its own ancestor.
type CycleViolation struct {
	Op       string
	ID       string
	ParentID string
}

func (e *CycleViolation) Error() string {
	return fmt.Sprintf("%s %q under %q: node would become its own ancestor", e.Op, e.ID, e.ParentID)
}

func (e *CycleViolation) Is(target error) bool { return target == ErrCycle }

// UnknownNodeError is returned when an operation references an id that is
// not in the tree.
type UnknownNodeError struct {
	Op string
	ID string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("%s: node %q not found", e.Op, e.ID)
}

func (e *UnknownNodeError) Is(target error) bool { return target == ErrUnknownNode }

// DuplicateNodeError is returned when a node id is already in use.
type DuplicateNodeError struct {
	Op string
	ID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("%s: node %q already exists", e.Op, e.ID)
}

func (e *DuplicateNodeError) Is(target error) bool { return target == ErrDuplicateNode }
