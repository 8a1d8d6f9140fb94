package extraction

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ArthaFlowSaas/internal/faults"
)

// TesseractExtractor shells out to pdftoppm + tesseract, one OCR run per
// page-segmentation mode. Requires poppler-utils and tesseract-ocr on PATH.
type TesseractExtractor struct {
	Languages string // tesseract -l argument, e.g. "ind+eng"
}

func NewTesseractExtractor() *TesseractExtractor {
	return &TesseractExtractor{Languages: "ind+eng"}
}

func (t *TesseractExtractor) ExtractText(ctx context.Context, filePath string, mode string) (string, float64, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", 0, &faults.ExtractionFailure{Mode: mode, Reason: "tesseract not available (install tesseract-ocr)"}
	}

	images, cleanup, err := t.pageImages(ctx, filePath)
	if err != nil {
		return "", 0, err
	}
	defer cleanup()

	var pages []string
	var confSum float64
	var confCount int
	for _, img := range images {
		text, conf, err := t.ocrPage(ctx, img, mode)
		if err != nil {
			// A bad page should not sink the remaining pages.
			continue
		}
		if text != "" {
			pages = append(pages, text)
		}
		if conf > 0 {
			confSum += conf
			confCount++
		}
	}
	if len(pages) == 0 {
		return "", 0, &faults.ExtractionFailure{Mode: mode, Reason: "no text recognized"}
	}
	confidence := 0.0
	if confCount > 0 {
		confidence = confSum / float64(confCount)
	}
	return strings.Join(pages, "\n"), confidence, nil
}

// pageImages renders a PDF to per-page PNGs, or passes a plain image through.
func (t *TesseractExtractor) pageImages(ctx context.Context, filePath string) ([]string, func(), error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != ".pdf" {
		return []string{filePath}, func() {}, nil
	}
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, nil, &faults.ExtractionFailure{Reason: "pdftoppm not available (install poppler-utils)"}
	}
	tmpDir, err := os.MkdirTemp("", "trx-ocr-*")
	if err != nil {
		return nil, nil, &faults.ExtractionFailure{Reason: "temp dir: " + err.Error()}
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", filePath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return nil, nil, &faults.ExtractionFailure{Reason: fmt.Sprintf("pdftoppm: %v (%s)", err, out)}
	}
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		cleanup()
		return nil, nil, &faults.ExtractionFailure{Reason: "read temp dir: " + err.Error()}
	}
	var images []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			images = append(images, filepath.Join(tmpDir, e.Name()))
		}
	}
	sort.Strings(images)
	if len(images) == 0 {
		cleanup()
		return nil, nil, &faults.ExtractionFailure{Reason: "pdftoppm produced no page images"}
	}
	return images, cleanup, nil
}

// ocrPage runs tesseract in TSV mode so the per-word confidences come back
// alongside the text. TSV column 10 is the confidence, column 11 the word.
func (t *TesseractExtractor) ocrPage(ctx context.Context, imgFile, mode string) (string, float64, error) {
	outBase := strings.TrimSuffix(imgFile, filepath.Ext(imgFile)) + "-psm" + mode
	lang := t.Languages
	if lang == "" {
		lang = "eng"
	}
	cmd := exec.CommandContext(ctx, "tesseract", imgFile, outBase, "-l", lang, "--psm", mode, "tsv")
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", 0, fmt.Errorf("tesseract: %v (%s)", err, out)
	}
	data, err := os.ReadFile(outBase + ".tsv")
	if err != nil {
		return "", 0, err
	}
	return parseTSV(string(data))
}

func parseTSV(tsv string) (string, float64, error) {
	var lines []string
	var current []string
	var confSum float64
	var confCount int
	lastLine := ""
	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 { // header row
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		confSum += conf
		confCount++
		// block/par/line numbers identify the output line a word belongs to
		lineKey := cols[1] + ":" + cols[2] + ":" + cols[3] + ":" + cols[4]
		if lineKey != lastLine && len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
		}
		lastLine = lineKey
		current = append(current, word)
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	confidence := 0.0
	if confCount > 0 {
		confidence = confSum / float64(confCount) / 100.0
	}
	return strings.Join(lines, "\n"), confidence, nil
}
