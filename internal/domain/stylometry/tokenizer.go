// Package stylometry implements the pure text-analysis core of VeriType:
// tokenization, sentence segmentation, stylometric feature extraction, and the
// fixed-weight heuristic detector. Everything in this package is
// deterministic, side-effect free, and total over arbitrary UTF-8 input.
package stylometry

import (
	"regexp"
	"strings"
)

// wordRE matches one token: a maximal run of Latin letters, digits, and
// apostrophes, or a single CJK ideograph. Applied to lowercased text.
var wordRE = regexp.MustCompile(`[A-Za-z0-9']+|[\x{4e00}-\x{9fff}]`)

// sentenceRE matches a run of sentence delimiters, ASCII and CJK.
var sentenceRE = regexp.MustCompile(`[.!?？！。；;]+`)

// Tokenize lowercases text and returns its tokens in order of appearance.
// Contractions keep their apostrophe ("don't" is one token); each CJK
// ideograph is its own token. The empty and whitespace-only inputs yield an
// empty slice.
func Tokenize(text string) []string {
	return wordRE.FindAllString(strings.ToLower(text), -1)
}

// SplitSentences splits text on runs of sentence delimiters, trims each piece
// of surrounding whitespace, and drops empties. Delimiters never appear in
// the output. A text without delimiters is a single sentence (if non-blank).
func SplitSentences(text string) []string {
	parts := sentenceRE.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
