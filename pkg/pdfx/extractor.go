package pdfx

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ExtractPages reads a PDF file and returns the plain text of each page,
// in page order. Pages that contain no extractable text (e.g. scanned
// images) come back as empty strings so page numbering stays 1-based and
// stable for chunk ids.
func ExtractPages(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]string, 0, total)

	for pageNum := 1; pageNum <= total; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the whole document
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}
