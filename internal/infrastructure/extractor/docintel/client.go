// Package docintel calls the external document-intelligence service that
// performs OCR and field extraction. Only its output contract matters here:
// a classified document type plus (field, value, confidence) triples.
package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/caseworks/evidence-intake/internal/core/domain"
	"github.com/caseworks/evidence-intake/internal/core/ports"
	"github.com/caseworks/evidence-intake/internal/infrastructure/resilience"
)

type Client struct {
	baseURL  string
	http     *http.Client
	executor *resilience.Executor
	limiter  *rate.Limiter
}

type Options struct {
	Timeout            time.Duration
	RequestsPerSecond  float64
	Burst              int
	ResilienceExecutor *resilience.Executor
}

func New(baseURL string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	rps := options.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := options.Burst
	if burst <= 0 {
		burst = 2
	}
	executor := options.ResilienceExecutor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}

	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		executor: executor,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

type analyzeResponse struct {
	DocumentType string  `json:"document_type"`
	PageCount    int     `json:"page_count"`
	Fields       []field `json:"fields"`
}

type field struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Extract sends the raw content to the analyze endpoint. Calls are throttled
// client-side and wrapped in retry + circuit breaker; a 4xx is permanent, a
// 5xx or transport error is retryable.
func (c *Client) Extract(ctx context.Context, content []byte, mimeType string) (ports.ExtractionOutput, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return ports.ExtractionOutput{}, err
	}

	var parsed analyzeResponse
	err := c.executor.Execute(ctx, "docintel_analyze", func(ctx context.Context) error {
		return c.analyze(ctx, content, mimeType, &parsed)
	}, resilience.ExternalServiceClassifier)
	if err != nil {
		return ports.ExtractionOutput{}, err
	}

	out := ports.ExtractionOutput{
		DocumentType: parsed.DocumentType,
		PageCount:    parsed.PageCount,
		Fields:       make([]ports.ExtractedField, 0, len(parsed.Fields)),
	}
	for _, f := range parsed.Fields {
		out.Fields = append(out.Fields, ports.ExtractedField{
			Name:       f.Name,
			Value:      f.Value,
			Confidence: f.Confidence,
		})
	}
	return out, nil
}

func (c *Client) analyze(ctx context.Context, content []byte, mimeType string, parsed *analyzeResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrExternalService, "call extraction service", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.WrapError(domain.ErrExternalService, "read analyze response", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return domain.WrapError(domain.ErrExternalService, "extraction service",
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200)))
	case resp.StatusCode >= 400:
		return fmt.Errorf("extraction service rejected request: status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, parsed); err != nil {
		return fmt.Errorf("decode analyze response: %w", err)
	}
	if parsed.DocumentType == "" && len(parsed.Fields) == 0 {
		return errors.New("extraction service returned an empty result")
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
