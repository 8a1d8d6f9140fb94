package extraction

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"ArthaFlowSaas/internal/faults"
)

// pdfTextConfidence is reported for text-layer extraction: the layer is exact
// when present, but layout fidelity still varies by producer.
const pdfTextConfidence = 0.99

// PDFTextExtractor reads the embedded text layer of digital PDFs. The
// segmentation mode is irrelevant for a text layer, so every pass sees the
// same text; the zone patterns sort out what belongs where.
type PDFTextExtractor struct{}

func NewPDFTextExtractor() *PDFTextExtractor { return &PDFTextExtractor{} }

func (p *PDFTextExtractor) ExtractText(ctx context.Context, filePath string, mode string) (string, float64, error) {
	text, err := readTextLayer(filePath)
	if err != nil {
		return "", 0, err
	}
	if !readableText(text) {
		return "", 0, &faults.ExtractionFailure{Mode: mode, Reason: "text layer unreadable, likely a scanned document"}
	}
	return text, pdfTextConfidence, nil
}

func readTextLayer(filePath string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &faults.ExtractionFailure{Reason: fmt.Sprintf("pdf library crashed: %v", r)}
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", &faults.ExtractionFailure{Reason: "open pdf: " + err.Error()}
	}
	defer f.Close()

	if r.NumPage() == 0 {
		return "", &faults.ExtractionFailure{Reason: "pdf has no pages"}
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}
	if len(pages) == 0 {
		return "", &faults.ExtractionFailure{Reason: "no text layer found"}
	}
	return strings.Join(pages, "\n"), nil
}

// readableText guards against identity-encoded fonts that decode to garbage.
func readableText(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	total, readable := 0, 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(".,-/:;()'\"$%&#", r) {
			readable++
		}
	}
	return total > 0 && float64(readable)/float64(total) >= 0.8
}

// AutoExtractor prefers the exact PDF text layer and falls back to OCR when
// the document is scanned or the layer is unreadable.
type AutoExtractor struct {
	TextLayer Provider
	OCR       Provider
}

func NewAutoExtractor() *AutoExtractor {
	return &AutoExtractor{TextLayer: NewPDFTextExtractor(), OCR: NewTesseractExtractor()}
}

func (a *AutoExtractor) ExtractText(ctx context.Context, filePath string, mode string) (string, float64, error) {
	if strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		if text, conf, err := a.TextLayer.ExtractText(ctx, filePath, mode); err == nil {
			return text, conf, nil
		}
	}
	return a.OCR.ExtractText(ctx, filePath, mode)
}
