// Package detection defines the public result types exchanged by the VeriType
// detection service across its HTTP, CLI, and client surfaces.
package detection

import "fmt"

// Label classifies a text as machine- or human-authored.
type Label string

const (
	LabelAI    Label = "AI-written"
	LabelHuman Label = "Human-written"
)

// Feature names. Every result carries all nine keys, including the two
// display-only signals that do not participate in scoring.
const (
	FeatureComplexity          = "complexity"
	FeatureBurstiness          = "burstiness"
	FeatureRepetition          = "repetition"
	FeatureDiversity           = "diversity"
	FeatureStopwordRatio       = "stopword_ratio"
	FeaturePunctuationDensity  = "punctuation_density"
	FeatureUppercaseRatio      = "uppercase_ratio"
	FeatureDigitRatio          = "digit_ratio"
	FeatureEntropy             = "entropy"
)

// FeatureNames returns the canonical feature ordering used by exports and
// table output. Callers must not mutate the returned slice.
func FeatureNames() []string {
	return featureNames
}

var featureNames = []string{
	FeatureComplexity,
	FeatureBurstiness,
	FeatureRepetition,
	FeatureDiversity,
	FeatureStopwordRatio,
	FeaturePunctuationDensity,
	FeatureUppercaseRatio,
	FeatureDigitRatio,
	FeatureEntropy,
}

// FeatureVector holds the nine normalized stylometric signals, each in [0,1].
type FeatureVector map[string]float64

// Complete reports whether the vector carries every canonical feature key.
func (fv FeatureVector) Complete() bool {
	for _, name := range featureNames {
		if _, ok := fv[name]; !ok {
			return false
		}
	}
	return true
}

// Result is the outcome of scoring a single text.
type Result struct {
	Label            Label         `json:"label"`
	AIProbability    float64       `json:"ai_probability"`
	HumanProbability float64       `json:"human_probability"`
	Features         FeatureVector `json:"features"`
}

// Flatten returns the result as an ordered flat row (label, probabilities,
// then features in canonical order), the shape used for CSV export and table
// rendering. Keys returns the matching header.
func (r Result) Flatten() []string {
	row := make([]string, 0, 3+len(featureNames))
	row = append(row,
		string(r.Label),
		formatProb(r.AIProbability),
		formatProb(r.HumanProbability),
	)
	for _, name := range featureNames {
		row = append(row, formatProb(r.Features[name]))
	}
	return row
}

// FlatHeader returns the column header matching Flatten's ordering.
func FlatHeader() []string {
	header := make([]string, 0, 3+len(featureNames))
	header = append(header, "label", "ai_probability", "human_probability")
	header = append(header, featureNames...)
	return header
}

func formatProb(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

// OpinionStatus tracks whether a secondary opinion was produced.
type OpinionStatus string

const (
	// OpinionOK means the oracle produced a usable opinion.
	OpinionOK OpinionStatus = "ok"
	// OpinionDisabled means no oracle is configured; the default.
	OpinionDisabled OpinionStatus = "disabled"
	// OpinionUnavailable means the oracle was asked but failed; the primary
	// result is unaffected.
	OpinionUnavailable OpinionStatus = "unavailable"
)

// Opinion is the secondary check produced by an external generative oracle.
// It is advisory only and never blended into the heuristic score.
type Opinion struct {
	Status      OpinionStatus `json:"status"`
	Label       Label         `json:"label,omitempty"`
	Probability float64       `json:"probability,omitempty"`
	Rationale   string        `json:"rationale,omitempty"`
}

// BatchItem pairs one batch element's result with its input position.
// Exactly one of Result and Error is set.
type BatchItem struct {
	Index  int     `json:"index"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// BatchSummary aggregates a batch run the way the report view presents it.
type BatchSummary struct {
	Total             int     `json:"total"`
	AICount           int     `json:"ai_count"`
	HumanCount        int     `json:"human_count"`
	FailedCount       int     `json:"failed_count"`
	MeanAIProbability float64 `json:"mean_ai_probability"`
}

// Summarize computes a BatchSummary over batch items.
func Summarize(items []BatchItem) BatchSummary {
	var s BatchSummary
	s.Total = len(items)
	var sum float64
	var scored int
	for _, it := range items {
		if it.Result == nil {
			s.FailedCount++
			continue
		}
		scored++
		sum += it.Result.AIProbability
		if it.Result.Label == LabelAI {
			s.AICount++
		} else {
			s.HumanCount++
		}
	}
	if scored > 0 {
		s.MeanAIProbability = sum / float64(scored)
	}
	return s
}
