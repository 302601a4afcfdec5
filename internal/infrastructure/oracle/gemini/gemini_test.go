package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritype/veritype/internal/config"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
	apperrors "github.com/veritype/veritype/pkg/errors"
	"github.com/veritype/veritype/pkg/types/detection"
)

func enabledConfig() config.OracleConfig {
	return config.OracleConfig{
		Enabled:    true,
		Provider:   "gemini",
		APIKey:     "test-key",
		Model:      "gemini-2.0-flash",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	}
}

func newTestOracle(t *testing.T, generate func(ctx context.Context, text string) (string, error)) *Oracle {
	t.Helper()
	o, err := New(enabledConfig(), logging.NewNopLogger())
	require.NoError(t, err)
	o.generate = generate
	return o
}

func TestNew_DisabledRejected(t *testing.T) {
	t.Parallel()

	_, err := New(config.OracleConfig{}, logging.NewNopLogger())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeOracleDisabled, apperrors.GetCode(err))
}

func TestNew_MissingAPIKey(t *testing.T) {
	t.Parallel()

	cfg := enabledConfig()
	cfg.APIKey = "  "
	_, err := New(cfg, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestClassify_Success(t *testing.T) {
	t.Parallel()

	o := newTestOracle(t, func(context.Context, string) (string, error) {
		return `{"label": "AI-written", "probability": 0.83, "rationale": "uniform phrasing"}`, nil
	})

	opinion, err := o.Classify(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, detection.OpinionOK, opinion.Status)
	assert.Equal(t, detection.LabelAI, opinion.Label)
	assert.InDelta(t, 0.83, opinion.Probability, 1e-9)
	assert.Equal(t, "uniform phrasing", opinion.Rationale)
}

func TestClassify_BlankText(t *testing.T) {
	t.Parallel()

	o := newTestOracle(t, func(context.Context, string) (string, error) {
		t.Fatal("generate must not be called")
		return "", nil
	})
	_, err := o.Classify(context.Background(), "   ")
	assert.True(t, apperrors.IsEmptyInput(err))
}

func TestClassify_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	o := newTestOracle(t, func(context.Context, string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("503 unavailable")
		}
		return `{"label": "Human-written", "probability": 0.2, "rationale": "varied rhythm"}`, nil
	})

	opinion, err := o.Classify(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, detection.LabelHuman, opinion.Label)
}

func TestClassify_ExhaustedRetries(t *testing.T) {
	t.Parallel()

	o := newTestOracle(t, func(context.Context, string) (string, error) {
		return "", errors.New("503 unavailable")
	})

	_, err := o.Classify(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeOracleUnavailable, apperrors.GetCode(err))
}

func TestClassify_MalformedJSON(t *testing.T) {
	t.Parallel()

	o := newTestOracle(t, func(context.Context, string) (string, error) {
		return "definitely AI, trust me", nil
	})

	_, err := o.Classify(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeOracleBadResponse, apperrors.GetCode(err))
}

func TestClassify_UnknownLabel(t *testing.T) {
	t.Parallel()

	o := newTestOracle(t, func(context.Context, string) (string, error) {
		return `{"label": "Cyborg-written", "probability": 0.5}`, nil
	})

	_, err := o.Classify(context.Background(), "text")
	assert.Equal(t, apperrors.ErrCodeOracleBadResponse, apperrors.GetCode(err))
}

func TestClassify_ProbabilityOutOfRange(t *testing.T) {
	t.Parallel()

	o := newTestOracle(t, func(context.Context, string) (string, error) {
		return `{"label": "AI-written", "probability": 1.4}`, nil
	})

	_, err := o.Classify(context.Background(), "text")
	assert.Equal(t, apperrors.ErrCodeOracleBadResponse, apperrors.GetCode(err))
}

func TestClassify_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOracle(t, func(context.Context, string) (string, error) {
		return "", errors.New("should not matter")
	})
	_, err := o.Classify(ctx, "text")
	assert.Error(t, err)
}

func TestParseVerdict_CodeFences(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"label\": \"AI-written\", \"probability\": 0.7, \"rationale\": \"r\"}\n```"
	opinion, err := parseVerdict(raw)
	require.NoError(t, err)
	assert.Equal(t, detection.LabelAI, opinion.Label)
}

func TestStripCodeFences(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"{\"a\":1}":                   `{"a":1}`,
		"```json\n{\"a\":1}\n```":     `{"a":1}`,
		"```\n{\"a\":1}\n```":         `{"a":1}`,
		"  no fences at all  ":        "no fences at all",
	}
	for in, want := range cases {
		assert.Equal(t, want, stripCodeFences(strings.TrimSpace(in)), in)
	}
}

func TestProvider(t *testing.T) {
	t.Parallel()

	o := newTestOracle(t, nil)
	assert.Equal(t, "gemini", o.Provider())
}
