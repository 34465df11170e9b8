package files

import (
	"bytes"
	"errors"

	pdf "rsc.io/pdf"
)

// PDFInfo is the inspection result for an uploaded document.
type PDFInfo struct {
	Pages   int    `json:"pages"`
	Preview string `json:"preview"`
}

// InspectPDF opens a PDF and returns its page count plus a text preview of up
// to maxChars. PDFs without a text layer yield an empty preview, not an error.
func InspectPDF(filePath string, maxChars int) (*PDFInfo, error) {
	if maxChars <= 0 {
		maxChars = 2000
	}
	r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	info := &PDFInfo{Pages: r.NumPage()}
	if info.Pages == 0 {
		return nil, errors.New("pdf has no pages")
	}

	var buf bytes.Buffer
	for pageIndex := 1; pageIndex <= info.Pages; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		for _, t := range p.Content().Text {
			buf.WriteString(t.S)
		}
		buf.WriteString("\n")
		if buf.Len() >= maxChars {
			break
		}
	}
	preview := buf.String()
	if len(preview) > maxChars {
		preview = preview[:maxChars]
	}
	info.Preview = preview
	return info, nil
}
