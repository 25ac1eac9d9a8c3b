package rendering

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

// documentDate is stamped on every document so identical text yields identical bytes.
var documentDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// RenderPDF sanitizes text, lays it out with geo and returns the PDF bytes.
func RenderPDF(text string, geo Geometry) ([]byte, error) {
	geo = geo.withDefaults()
	pages := Paginate(Sanitize(text), geo)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: geo.PageWidth, Ht: geo.PageHeight},
	})
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Courier", "", geo.FontSize)

	encoder := charmap.ISO8859_1.NewEncoder()
	for _, page := range pages {
		pdf.AddPage()
		for _, line := range page.Lines {
			if line.Text == "" {
				continue
			}
			encoded, err := encoder.String(line.Text)
			if err != nil {
				return nil, &RenderError{Message: "failed to encode line", Cause: err}
			}
			pdf.Text(geo.MarginLeft, geo.PageHeight-line.Y, encoded)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Message: "failed to write PDF", Cause: err}
	}
	return buf.Bytes(), nil
}
