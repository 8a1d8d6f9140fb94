// Package extraction wraps the external text-extraction engines behind a
// narrow provider interface. The reconciliation engine consumes the output of
// one extraction pass per page-segmentation mode as an opaque string; a failed
// pass degrades to empty text and never aborts the document flow.
package extraction

import (
	"context"
	"log"

	"ArthaFlowSaas/internal/reconcile"
)

// Provider is one text-extraction engine: given a document file and a
// page-segmentation-mode token it returns raw text plus a confidence score.
type Provider interface {
	ExtractText(ctx context.Context, filePath string, mode string) (text string, confidence float64, err error)
}

// Pass assigns a segmentation mode to a semantic zone.
type Pass struct {
	Zone reconcile.Zone
	Mode string
}

// DefaultPasses are the four required passes: one per dedicated zone plus the
// fallback sweep over the whole page. Mode tokens are tesseract PSM values.
var DefaultPasses = []Pass{
	{Zone: reconcile.ZoneHeader, Mode: "6"},
	{Zone: reconcile.ZoneItems, Mode: "4"},
	{Zone: reconcile.ZoneTotal, Mode: "11"},
	{Zone: reconcile.ZoneFallback, Mode: "3"},
}

// CollectBlocks runs every pass against the provider. A pass that errors is
// logged and contributes an empty block; the merge simply finds nothing in it.
func CollectBlocks(ctx context.Context, p Provider, filePath string) []reconcile.TextBlock {
	blocks := make([]reconcile.TextBlock, 0, len(DefaultPasses))
	for _, pass := range DefaultPasses {
		text, conf, err := p.ExtractText(ctx, filePath, pass.Mode)
		if err != nil {
			log.Printf("[WARN] extraction pass zone=%s mode=%s failed: %v", pass.Zone, pass.Mode, err)
			text, conf = "", 0
		}
		blocks = append(blocks, reconcile.TextBlock{Zone: pass.Zone, Text: text, Confidence: conf})
	}
	return blocks
}
