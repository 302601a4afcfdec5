// Package gemini implements the secondary-opinion oracle on Google's
// generative API. The oracle classifies a text independently of the heuristic
// detector; its verdict is advisory only.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/veritype/veritype/internal/config"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/veritype/veritype/pkg/errors"
	"github.com/veritype/veritype/pkg/types/detection"
)

const systemPrompt = `You are a text-authorship classifier. Given a text, judge whether it was
written by an AI language model or by a human. Respond with ONLY a JSON object
of this exact shape:

{"label": "AI-written" | "Human-written", "probability": <number 0..1, the probability the text is AI-written>, "rationale": "<one short sentence>"}

Any output outside the JSON object is an error.`

// verdict is the oracle's raw JSON response.
type verdict struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
	Rationale   string  `json:"rationale"`
}

// Oracle calls the Gemini API to produce a second opinion.
type Oracle struct {
	cfg     config.OracleConfig
	logger  logging.Logger
	metrics *prometheus.AppMetrics

	// generate performs one model call; replaced in tests.
	generate func(ctx context.Context, text string) (string, error)
}

// Option customizes an Oracle.
type Option func(*Oracle)

// WithMetrics wires oracle call metrics.
func WithMetrics(metrics *prometheus.AppMetrics) Option {
	return func(o *Oracle) { o.metrics = metrics }
}

// New builds the Gemini oracle. The oracle must be enabled and carry an API
// key; use the application's disabled default otherwise.
func New(cfg config.OracleConfig, log logging.Logger, opts ...Option) (*Oracle, error) {
	if !cfg.Enabled {
		return nil, apperrors.New(apperrors.ErrCodeOracleDisabled, "oracle is not enabled")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperrors.InvalidParam("oracle API key is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	o := &Oracle{
		cfg:    cfg,
		logger: log.Named("oracle"),
	}
	o.generate = o.generateContent
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Oracle) Provider() string { return "gemini" }

// Classify asks the model for a verdict, retrying transient failures.
func (o *Oracle) Classify(ctx context.Context, text string) (*detection.Opinion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.EmptyInput("text contains no usable content")
	}

	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	attempts := o.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			break
		}
		raw, err := o.generate(ctx, text)
		if err != nil {
			lastErr = err
			o.logger.Warn("oracle call failed",
				logging.Int("attempt", attempt),
				logging.Err(err),
			)
			select {
			case <-ctx.Done():
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
			continue
		}

		opinion, err := parseVerdict(raw)
		if err != nil {
			o.record(false, time.Since(start), attempt-1)
			return nil, err
		}
		o.record(true, time.Since(start), attempt-1)
		return opinion, nil
	}

	o.record(false, time.Since(start), attempts)
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return nil, apperrors.Wrap(lastErr, apperrors.ErrCodeOracleUnavailable, "oracle did not produce a verdict")
}

// generateContent performs one real Gemini API call.
func (o *Oracle) generateContent(ctx context.Context, text string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(o.cfg.APIKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(strings.TrimSpace(o.cfg.Model))
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text("TEXT:\n"+text))
	if err != nil {
		return "", err
	}
	out := firstText(resp)
	if out == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return out, nil
}

func (o *Oracle) record(success bool, elapsed time.Duration, retries int) {
	if o.metrics == nil {
		return
	}
	prometheus.RecordOracleCall(o.metrics, o.Provider(), success, elapsed, retries)
}

// parseVerdict decodes the model's JSON into an Opinion.
func parseVerdict(raw string) (*detection.Opinion, error) {
	raw = stripCodeFences(strings.TrimSpace(raw))

	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeOracleBadResponse, "oracle returned malformed JSON")
	}

	var label detection.Label
	switch v.Label {
	case string(detection.LabelAI):
		label = detection.LabelAI
	case string(detection.LabelHuman):
		label = detection.LabelHuman
	default:
		return nil, apperrors.New(apperrors.ErrCodeOracleBadResponse,
			fmt.Sprintf("oracle returned unknown label %q", v.Label))
	}
	if v.Probability < 0 || v.Probability > 1 {
		return nil, apperrors.New(apperrors.ErrCodeOracleBadResponse,
			fmt.Sprintf("oracle probability %g is out of [0,1]", v.Probability))
	}

	return &detection.Opinion{
		Status:      detection.OpinionOK,
		Label:       label,
		Probability: v.Probability,
		Rationale:   v.Rationale,
	}, nil
}

// stripCodeFences removes a surrounding ``` block if the model added one
// despite the JSON response type.
func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
