package tailoring

import "unicode/utf8"

// ClipMarker joins the head and tail of a clipped text.
const ClipMarker = "\n...\n"

// Clip bounds text to roughly budget runes by keeping the first and last budget/2 runes
// joined by ClipMarker. Text within the budget is returned unchanged.
func Clip(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= budget {
		return text
	}
	runes := []rune(text)
	half := budget / 2
	return string(runes[:half]) + ClipMarker + string(runes[len(runes)-half:])
}
