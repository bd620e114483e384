// Package pagecount determines page counts at intake, before extraction has
// run. PDFs are inspected directly; everything else (images, single-page
// scans) counts as one page.
package pagecount

import (
	"bytes"
	"log/slog"

	"github.com/ledongthuc/pdf"
)

type Counter struct{}

func New() *Counter {
	return &Counter{}
}

func (c *Counter) Count(content []byte, mimeType string) int {
	if mimeType != "application/pdf" {
		return 1
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		// malformed PDFs still enter the pipeline; the extractor decides
		slog.Debug("pdf_page_count_failed", "error", err)
		return 1
	}
	pages := reader.NumPage()
	if pages < 1 {
		return 1
	}
	return pages
}
