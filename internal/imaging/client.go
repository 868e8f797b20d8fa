// Package imaging forwards brain-scan images to the classification backend.
package imaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/models"
)

var (
	ErrAnalysisFailed     = errors.New("scan analysis failed")
	ErrAnalyzerDisabled   = errors.New("scan analysis is not configured")
	ErrEmptyScan          = errors.New("scan file is empty")
	defaultRequestTimeout = 60 * time.Second
)

// Analyzer classifies an uploaded scan.
type Analyzer interface {
	Analyze(ctx context.Context, filename string, content io.Reader) (*models.ScanAnalysis, error)
}

// Client posts the scan as multipart field "file" to the backend.
type Client struct {
	endpoint string
	httpc    *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// backendResponse accepts both the {stage, description} shape and the raw
// classifier output {label, label_ru, prob, probs}.
type backendResponse struct {
	Stage       string             `json:"stage"`
	Description string             `json:"description"`
	Label       string             `json:"label"`
	LabelRU     string             `json:"label_ru"`
	Prob        float64            `json:"prob"`
	Probs       map[string]float64 `json:"probs"`
}

func (c *Client) Analyze(ctx context.Context, filename string, content io.Reader) (*models.ScanAnalysis, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart part: %w", err)
	}
	n, err := io.Copy(part, content)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyScan
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: backend %d: %s", ErrAnalysisFailed, resp.StatusCode, string(x))
	}

	var out backendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: bad JSON: %v", ErrAnalysisFailed, err)
	}
	return out.toAnalysis(), nil
}

func (r backendResponse) toAnalysis() *models.ScanAnalysis {
	a := &models.ScanAnalysis{
		Stage:         r.Stage,
		Description:   r.Description,
		Label:         r.Label,
		Probability:   r.Prob,
		Probabilities: r.Probs,
	}
	if a.Stage == "" {
		a.Stage = r.LabelRU
	}
	if a.Stage == "" {
		a.Stage = r.Label
	}
	if a.Description == "" && r.Prob > 0 {
		a.Description = fmt.Sprintf("Вероятность: %.1f%%", r.Prob*100)
	}
	return a
}

// Disabled is used when no backend is configured.
type Disabled struct{}

func (Disabled) Analyze(context.Context, string, io.Reader) (*models.ScanAnalysis, error) {
	return nil, ErrAnalyzerDisabled
}
