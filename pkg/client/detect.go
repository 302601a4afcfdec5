package client

import (
	"context"
	"fmt"

	"github.com/veritype/veritype/pkg/types/detection"
)

// DetectRequest scores a single text.
type DetectRequest struct {
	Text           string `json:"text"`
	IncludeOpinion bool   `json:"include_opinion,omitempty"`
}

// DetectResponse is the result of scoring a single text.
type DetectResponse struct {
	RequestID string             `json:"request_id"`
	Result    *detection.Result  `json:"result"`
	Opinion   *detection.Opinion `json:"opinion,omitempty"`
	Cached    bool               `json:"cached,omitempty"`
}

// BatchRequest scores several texts in one call.
type BatchRequest struct {
	Texts []string `json:"texts"`
}

// BatchResponse holds per-text results in input order plus the aggregate
// summary.
type BatchResponse struct {
	RequestID string                 `json:"request_id"`
	Items     []detection.BatchItem  `json:"items"`
	Summary   detection.BatchSummary `json:"summary"`
}

// Detect classifies a single text as AI- or human-written.
func (c *Client) Detect(ctx context.Context, req *DetectRequest) (*DetectResponse, error) {
	if req == nil || req.Text == "" {
		return nil, fmt.Errorf("client: text is required")
	}
	var resp DetectResponse
	if err := c.post(ctx, "/api/v1/detect", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DetectBatch classifies several texts in one call. Individual element
// failures appear as item errors, not as a call error.
func (c *Client) DetectBatch(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	if req == nil || len(req.Texts) == 0 {
		return nil, fmt.Errorf("client: at least one text is required")
	}
	var resp BatchResponse
	if err := c.post(ctx, "/api/v1/detect/batch", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthStatus reports the server's liveness view.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Health fetches the server's liveness status.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.get(ctx, "/healthz", &status); err != nil {
		return nil, err
	}
	return &status, nil
}
