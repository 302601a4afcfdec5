package stylometry

import (
	"math"

	"github.com/veritype/veritype/pkg/types/detection"
)

// Reference weighting. Positive weights push toward the AI label, negative
// ones toward human. uppercase_ratio and digit_ratio are computed and
// reported but deliberately carry no weight; they are display-only signals.
var referenceWeights = map[string]float64{
	detection.FeatureComplexity:         1.2,
	detection.FeatureBurstiness:         -1.4,
	detection.FeatureRepetition:         1.1,
	detection.FeatureDiversity:          -1.3,
	detection.FeatureStopwordRatio:      0.8,
	detection.FeaturePunctuationDensity: -0.4,
	detection.FeatureEntropy:            -0.7,
}

// referenceBias is the intercept of the reference weighting.
const referenceBias = 0.15

// ReferenceWeights returns a copy of the built-in feature weighting.
func ReferenceWeights() map[string]float64 {
	w := make(map[string]float64, len(referenceWeights))
	for k, v := range referenceWeights {
		w[k] = v
	}
	return w
}

// ReferenceBias returns the built-in intercept.
func ReferenceBias() float64 { return referenceBias }

// Detector scores texts with a fixed linear weighting over stylometric
// features. Implementations are safe for concurrent use; the weighting is
// immutable after construction.
type Detector interface {
	// Predict scores one text. It is total: any input, including the empty
	// string, produces a fully populated result.
	Predict(text string) *detection.Result

	// BatchPredict scores texts independently, preserving input order.
	// BatchPredict(texts)[i] always equals Predict(texts[i]).
	BatchPredict(texts []string) []*detection.Result

	// Weights returns a copy of the active feature weighting.
	Weights() map[string]float64

	// Bias returns the active intercept.
	Bias() float64
}

type detector struct {
	weights map[string]float64
	bias    float64
}

// Option customizes a Detector at construction time.
type Option func(*detector)

// WithWeights replaces the reference feature weighting. Feature names absent
// from the map simply carry no weight. The map is copied.
func WithWeights(weights map[string]float64) Option {
	return func(d *detector) {
		w := make(map[string]float64, len(weights))
		for k, v := range weights {
			w[k] = v
		}
		d.weights = w
	}
}

// WithBias replaces the reference intercept.
func WithBias(bias float64) Option {
	return func(d *detector) {
		d.bias = bias
	}
}

// NewDetector constructs a Detector with the reference weighting unless
// overridden by options.
func NewDetector(opts ...Option) Detector {
	d := &detector{
		weights: ReferenceWeights(),
		bias:    referenceBias,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *detector) Predict(text string) *detection.Result {
	features := ExtractFeatures(text)
	score := d.bias
	for name, value := range features {
		if w, ok := d.weights[name]; ok {
			score += w * value
		}
	}
	aiProb := sigmoid(score)
	label := detection.LabelHuman
	if aiProb >= 0.5 {
		label = detection.LabelAI
	}
	return &detection.Result{
		Label:            label,
		AIProbability:    aiProb,
		HumanProbability: 1 - aiProb,
		Features:         features,
	}
}

func (d *detector) BatchPredict(texts []string) []*detection.Result {
	results := make([]*detection.Result, len(texts))
	for i, text := range texts {
		results[i] = d.Predict(text)
	}
	return results
}

func (d *detector) Weights() map[string]float64 {
	w := make(map[string]float64, len(d.weights))
	for k, v := range d.weights {
		w[k] = v
	}
	return w
}

func (d *detector) Bias() float64 { return d.bias }

// sigmoid is the logistic squash, evaluated in the branch that avoids
// overflow for large |x|.
func sigmoid(x float64) float64 {
	if x >= 0 {
		z := math.Exp(-x)
		return 1 / (1 + z)
	}
	z := math.Exp(x)
	return z / (1 + z)
}
