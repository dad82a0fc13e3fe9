package numbering

import "strings"

var (
	romanValues  = []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	romanSymbols = []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
)

// Roman renders n as an uppercase Roman numeral using subtractive notation.
// Non-positive values render as the empty string.
func Roman(n int) string {
	var b strings.Builder
	for i := 0; i < len(romanValues) && n > 0; i++ {
		for n >= romanValues[i] {
			n -= romanValues[i]
			b.WriteString(romanSymbols[i])
		}
	}
	return b.String()
}
