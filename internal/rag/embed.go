package rag

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const embedConcurrency = 4

// embedAll embeds texts concurrently and keeps the input order.
func embedAll(ctx context.Context, e EmbeddingsClient, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for i, text := range texts {
		g.Go(func() error {
			vec, err := e.Embed(gCtx, text)
			if err != nil {
				return fmt.Errorf("embedding chunk %d: %w", i, err)
			}
			if dim := e.Dimensions(); dim > 0 && len(vec) != dim {
				return fmt.Errorf("embedding chunk %d: got %d dimensions, want %d", i, len(vec), dim)
			}
			out[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func chunkTexts(chunks []DocChunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	return texts
}
