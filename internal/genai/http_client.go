package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"peakform/coaching-app/internal/config"
	"peakform/coaching-app/internal/platform/logger"
)

// httpGenerator calls a remote generation endpoint over HTTP.
type httpGenerator struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *logger.Logger
}

// NewHTTPGenerator builds a Generator against the configured endpoint.
func NewHTTPGenerator(cfg config.GenAIConfig, log *logger.Logger) Generator {
	return &httpGenerator{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.Timeout},
		log:      log,
	}
}

type generateRequest struct {
	Prompt      string `json:"prompt"`
	SourceImage string `json:"sourceImage,omitempty"` // base64
}

type generateResponse struct {
	Data        string `json:"data"` // base64
	ContentType string `json:"contentType"`
	Error       string `json:"error,omitempty"`
}

func (g *httpGenerator) Generate(ctx context.Context, prompt string, sourceImage []byte) (*GeneratedAsset, error) {
	payload := generateRequest{Prompt: prompt}
	if len(sourceImage) > 0 {
		payload.SourceImage = base64.StdEncoding.EncodeToString(sourceImage)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn("generation request failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		g.log.Warn("generation endpoint error", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrGenerationFailed, resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, out.Error)
	}

	data, err := base64.StdEncoding.DecodeString(out.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return &GeneratedAsset{Data: data, ContentType: out.ContentType}, nil
}
