package stylometry

// stopwords is the fixed English function-word set used by the stopword_ratio
// feature. Tokens are matched after case folding.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "to": {}, "of": {}, "in": {},
	"is": {}, "it": {}, "that": {}, "as": {}, "for": {}, "with": {},
	"was": {}, "were": {}, "on": {}, "by": {}, "be": {}, "are": {},
	"this": {}, "at": {}, "from": {}, "or": {}, "which": {}, "but": {},
	"have": {}, "has": {}, "had": {}, "not": {}, "we": {}, "they": {},
	"you": {}, "i": {}, "their": {}, "its": {}, "our": {}, "will": {},
	"can": {}, "about": {}, "also": {}, "into": {}, "more": {}, "than": {},
}

// IsStopword reports whether the (already lowercased) token is in the fixed
// stopword set.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
