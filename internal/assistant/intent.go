package assistant

import "strings"

// IntentKind classifies an incoming message before any model call.
type IntentKind int

const (
	// IntentModel routes the message to the language model.
	IntentModel IntentKind = iota
	// IntentSearch short-circuits to a local catalog search.
	IntentSearch
	// IntentSentinel is the deterministic health probe: the full catalog
	// listing is returned without touching the model.
	IntentSentinel
)

// Intent is the classification outcome. Query carries the original
// message text when Kind is IntentSearch.
type Intent struct {
	Kind  IntentKind
	Query string
}

// searchKeywords signal a catalog lookup in either storefront language:
// lookup verbs plus the generic merchandise nouns. A message containing
// any of them never needs the model to decide what the customer wants.
var searchKeywords = []string{
	"검색", "찾아", "보여", "추천",
	"search", "find", "show", "recommend", "item", "weapon",
}

// sentinelPhrases trigger the deterministic catalog dump. Matched on the
// whole trimmed message, not as a substring.
var sentinelPhrases = []string{"test", "테스트"}

// ClassifyIntent decides how to route a message. catalogTerms is the set
// of lowercased product names and categories; mentioning one of them is
// treated as a search just like the explicit keywords.
func ClassifyIntent(message string, catalogTerms []string) Intent {
	trimmed := strings.TrimSpace(message)
	lowered := strings.ToLower(trimmed)

	for _, phrase := range sentinelPhrases {
		if lowered == phrase {
			return Intent{Kind: IntentSentinel}
		}
	}

	for _, keyword := range searchKeywords {
		if strings.Contains(lowered, keyword) {
			return Intent{Kind: IntentSearch, Query: trimmed}
		}
	}
	for _, term := range catalogTerms {
		if term != "" && strings.Contains(lowered, term) {
			return Intent{Kind: IntentSearch, Query: trimmed}
		}
	}

	return Intent{Kind: IntentModel}
}
