package main

import (
	"context"

	"github.com/kailas-cloud/giftsearch/internal/domain"
)

type stubEmbedder struct{}

func (*stubEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, nil
}
