// Package genai is the boundary to the generative content collaborator used
// for AI image/text assists in the asset library. Failures are surfaced as
// ErrGenerationFailed and must never take down the calling handler.
package genai

import (
	"context"
	"errors"
)

var ErrGenerationFailed = errors.New("content generation failed")

// GeneratedAsset is the raw output of a generation call, ready to be stored
// through the asset service.
type GeneratedAsset struct {
	Data        []byte
	ContentType string
}

// Generator produces an asset from a prompt, optionally conditioned on a
// source image.
type Generator interface {
	Generate(ctx context.Context, prompt string, sourceImage []byte) (*GeneratedAsset, error)
}
