package numbering

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
)

// DefaultLocale is used when a caller passes an empty locale.
const DefaultLocale = "en"

// Formatter spells sibling positions for one language.
//
// Only English has full ordinal words. French, German, Italian and Spanish
// spell small positions as cardinal words; every other language, and every
// position past a formatter's word list, falls back to decimal digits. This
// degradation is deliberate and never an error.
type Formatter interface {
	// Spell renders a 1-based position, e.g. "third" or "trois".
	Spell(position int) string
	// Phrase joins a type name and a spelled position into a label,
	// e.g. "third paragraph" or "paragraphe trois".
	Phrase(name, spelled string) string
}

var formatters = map[string]Formatter{
	"en": englishFormatter{},
	"fr": cardinalFormatter{words: []string{"un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf", "dix"}},
	"de": cardinalFormatter{words: []string{"eins", "zwei", "drei", "vier", "fünf", "sechs", "sieben", "acht", "neun", "zehn"}},
	"it": cardinalFormatter{words: []string{"uno", "due", "tre", "quattro", "cinque", "sei", "sette", "otto", "nove", "dieci"}},
	"es": cardinalFormatter{words: []string{"uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve", "diez"}},
}

// parseLocale returns the tag and base language code of a locale string such as
// "en", "en-GB" or "fr_BE". Unparseable locales map to und.
func parseLocale(locale string) (language.Tag, string) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, "und"
	}
	base, _ := tag.Base()
	return tag, base.String()
}

// FormatterFor returns the formatter for a locale, or the numeral fallback.
func FormatterFor(locale string) Formatter {
	_, lang := parseLocale(locale)
	if f, ok := formatters[lang]; ok {
		return f
	}
	return numeralFormatter{}
}

var englishOrdinals = []string{
	"first", "second", "third", "fourth", "fifth",
	"sixth", "seventh", "eighth", "ninth", "tenth",
	"eleventh", "twelfth", "thirteenth", "fourteenth", "fifteenth",
	"sixteenth", "seventeenth", "eighteenth", "nineteenth", "twentieth",
}

// englishFormatter spells first through twentieth and uses 21st, 22nd...
// beyond that.
type englishFormatter struct{}

func (englishFormatter) Spell(position int) string {
	if position >= 1 && position <= len(englishOrdinals) {
		return englishOrdinals[position-1]
	}
	return humanize.Ordinal(position)
}

func (englishFormatter) Phrase(name, spelled string) string {
	return spelled + " " + name
}

// cardinalFormatter spells small positions as cardinal words.
type cardinalFormatter struct {
	words []string
}

func (f cardinalFormatter) Spell(position int) string {
	if position >= 1 && position <= len(f.words) {
		return f.words[position-1]
	}
	return strconv.Itoa(position)
}

func (cardinalFormatter) Phrase(name, spelled string) string {
	return name + " " + spelled
}

type numeralFormatter struct{}

func (numeralFormatter) Spell(position int) string {
	return strconv.Itoa(position)
}

func (numeralFormatter) Phrase(name, spelled string) string {
	return name + " " + spelled
}
