package stylometry

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/veritype/veritype/pkg/types/detection"
)

// punctuationSet holds the characters counted by punctuation_density.
const punctuationSet = `.,;:!?()[]"'`

// singleSentenceBurstiness is the sentinel for texts with exactly one
// sentence, where rhythm variance is undefined.
const singleSentenceBurstiness = 0.2

// ExtractFeatures computes the nine stylometric signals for text. All values
// land in [0,1]; degenerate inputs (empty text, no tokens, no sentences) get
// well-defined defaults rather than errors.
func ExtractFeatures(text string) detection.FeatureVector {
	tokens := Tokenize(text)
	sentences := SplitSentences(text)
	return extract(text, tokens, sentences)
}

func extract(text string, tokens, sentences []string) detection.FeatureVector {
	totalChars := utf8.RuneCountInString(text)
	if totalChars == 0 {
		totalChars = 1
	}
	totalTokens := len(tokens)
	if totalTokens == 0 {
		totalTokens = 1
	}

	var avgSentenceLen float64
	if len(sentences) > 0 {
		sum := 0
		for _, s := range sentences {
			sum += len(strings.Fields(s))
		}
		avgSentenceLen = float64(sum) / float64(len(sentences))
	} else {
		avgSentenceLen = float64(len(tokens))
	}

	var avgWordLen float64
	if len(tokens) > 0 {
		sum := 0
		for _, t := range tokens {
			sum += utf8.RuneCountInString(t)
		}
		avgWordLen = float64(sum) / float64(len(tokens))
	}

	stopwordCount := 0
	for _, t := range tokens {
		if IsStopword(t) {
			stopwordCount++
		}
	}

	var punct, upper, digit int
	for _, ch := range text {
		if strings.ContainsRune(punctuationSet, ch) {
			punct++
		}
		if unicode.IsUpper(ch) {
			upper++
		}
		if unicode.IsDigit(ch) {
			digit++
		}
	}

	distinct := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		distinct[t] = struct{}{}
	}

	complexity := scale(avgSentenceLen, 10, 40)*0.7 + scale(avgWordLen, 4, 8)*0.3

	return detection.FeatureVector{
		detection.FeatureComplexity:         complexity,
		detection.FeatureBurstiness:         burstiness(sentences),
		detection.FeatureRepetition:         repetition(tokens),
		detection.FeatureDiversity:          float64(len(distinct)) / float64(totalTokens),
		detection.FeatureStopwordRatio:      float64(stopwordCount) / float64(totalTokens),
		detection.FeaturePunctuationDensity: clamp(float64(punct) / float64(totalChars)),
		detection.FeatureUppercaseRatio:     clamp(float64(upper) / float64(totalChars)),
		detection.FeatureDigitRatio:         clamp(float64(digit) / float64(totalChars)),
		detection.FeatureEntropy:            entropy(tokens),
	}
}

// repetition is the relative frequency of the most frequent token, so a text
// of N identical tokens scores 1 and a text of N distinct tokens scores 1/N.
func repetition(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	freq := make(map[string]int, len(tokens))
	maxFreq := 0
	for _, t := range tokens {
		freq[t]++
		if freq[t] > maxFreq {
			maxFreq = freq[t]
		}
	}
	return float64(maxFreq) / float64(len(tokens))
}

// burstiness is the coefficient of variation (population stddev over mean) of
// per-sentence word counts, clamped to [0,1]. Sentences without words are
// ignored; zero usable sentences score 0 and exactly one scores the sentinel.
func burstiness(sentences []string) float64 {
	lengths := make([]float64, 0, len(sentences))
	for _, s := range sentences {
		if n := len(strings.Fields(s)); n > 0 {
			lengths = append(lengths, float64(n))
		}
	}
	if len(lengths) == 0 {
		return 0
	}
	if len(lengths) == 1 {
		return singleSentenceBurstiness
	}
	var sum float64
	for _, l := range lengths {
		sum += l
	}
	mean := sum / float64(len(lengths))
	if mean == 0 {
		return 0
	}
	var varSum float64
	for _, l := range lengths {
		d := l - mean
		varSum += d * d
	}
	std := math.Sqrt(varSum / float64(len(lengths)))
	return clamp(std / mean)
}

// entropy is the Shannon entropy of the token distribution in bits,
// normalized by log2 of the distinct-token count when more than one distinct
// token exists, then clamped. One distinct token scores 0; no tokens score 0.
func entropy(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	total := float64(len(tokens))
	var h float64
	for _, count := range freq {
		p := float64(count) / total
		h -= p * math.Log2(p)
	}
	maxEntropy := 1.0
	if len(freq) > 1 {
		maxEntropy = math.Log2(float64(len(freq)))
	}
	return clamp(h / maxEntropy)
}

// scale maps value from [min,max] onto [0,1] with clamping at both ends.
func scale(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return clamp((value - min) / (max - min))
}

func clamp(value float64) float64 {
	return math.Max(0, math.Min(value, 1))
}
