package rendering

import (
	"strings"
	"unicode/utf8"
)

// Geometry describes the page size, margins and line metrics, in points.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	MarginLeft   float64
	MarginTop    float64
	MarginBottom float64
	Leading      float64
	FontSize     float64
	// WidthChars is the maximum number of characters on a line.
	WidthChars int
}

// DefaultGeometry is a US Letter page with one-inch margins.
func DefaultGeometry() Geometry {
	return Geometry{
		PageWidth:    612,
		PageHeight:   792,
		MarginLeft:   72,
		MarginTop:    72,
		MarginBottom: 72,
		Leading:      14,
		FontSize:     8,
		WidthChars:   95,
	}
}

func (g Geometry) withDefaults() Geometry {
	d := DefaultGeometry()
	if g.PageWidth <= 0 || g.PageHeight <= 0 {
		g.PageWidth, g.PageHeight = d.PageWidth, d.PageHeight
	}
	if g.Leading <= 0 {
		g.Leading = d.Leading
	}
	if g.FontSize <= 0 {
		g.FontSize = d.FontSize
	}
	if g.WidthChars <= 0 {
		g.WidthChars = d.WidthChars
	}
	return g
}

// Line is one laid-out line. Y is the baseline measured up from the bottom edge.
type Line struct {
	Text string
	Y    float64
}

// Page is an ordered run of lines.
type Page struct {
	Number int
	Lines  []Line
}

// Paginate wraps text into lines of at most geo.WidthChars characters and distributes them
// over pages. It always returns at least one page.
func Paginate(text string, geo Geometry) []Page {
	geo = geo.withDefaults()
	l := &layout{geo: geo}
	l.newPage()

	for _, paragraph := range splitLines(text) {
		words := strings.Fields(paragraph)
		// whitespace-only paragraphs render as a blank line, like empty ones
		if len(words) == 0 {
			l.emit("")
			continue
		}
		line := ""
		for _, word := range words {
			for _, piece := range breakWord(word, geo.WidthChars) {
				switch {
				case line == "":
					line = piece
				case utf8.RuneCountInString(line)+utf8.RuneCountInString(piece)+1 <= geo.WidthChars:
					line += " " + piece
				default:
					l.emit(line)
					line = piece
				}
			}
		}
		if line != "" {
			l.emit(line)
		}
	}
	return l.pages
}

type layout struct {
	geo   Geometry
	pages []Page
	y     float64
}

func (l *layout) newPage() {
	l.pages = append(l.pages, Page{Number: len(l.pages) + 1})
	l.y = l.geo.PageHeight - l.geo.MarginTop
}

func (l *layout) emit(text string) {
	if l.y <= l.geo.MarginBottom {
		l.newPage()
	}
	p := &l.pages[len(l.pages)-1]
	p.Lines = append(p.Lines, Line{Text: text, Y: l.y})
	l.y -= l.geo.Leading
}

// splitLines splits on newlines, dropping the empty element after a trailing newline.
// Empty text yields a single empty paragraph.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}

// breakWord splits a word longer than width into width-sized pieces.
func breakWord(word string, width int) []string {
	if utf8.RuneCountInString(word) <= width {
		return []string{word}
	}
	runes := []rune(word)
	var pieces []string
	for len(runes) > width {
		pieces = append(pieces, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}

// LinesPerPage returns how many lines fit on one page for geo.
func LinesPerPage(geo Geometry) int {
	geo = geo.withDefaults()
	n := 0
	for y := geo.PageHeight - geo.MarginTop; y > geo.MarginBottom; y -= geo.Leading {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}
