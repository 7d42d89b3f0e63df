// Package extract implements the per-source-variant extractors that
// reduce raw bytes or a fetched URL to a canonical ExtractedContent.
package extract

import (
	"context"

	"github.com/secondbrain/core/internal/core"
)

// Extractor produces canonical ExtractedContent from raw source bytes.
type Extractor interface {
	Extract(ctx context.Context, input []byte) (*core.ExtractedContent, error)
}
