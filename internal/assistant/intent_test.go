package assistant

import "testing"

func TestClassifyIntentSentinel(t *testing.T) {
	for _, message := range []string{"test", "테스트", "  TEST  "} {
		intent := ClassifyIntent(message, nil)
		if intent.Kind != IntentSentinel {
			t.Fatalf("%q: expected sentinel, got %v", message, intent.Kind)
		}
	}

	// The sentinel matches only the whole message.
	if intent := ClassifyIntent("test the crossbow", nil); intent.Kind == IntentSentinel {
		t.Fatal("sentinel must not fire as a substring")
	}
}

func TestClassifyIntentSearchKeywords(t *testing.T) {
	cases := []string{
		"카타나 검색해줘",
		"권총 좀 찾아줘",
		"무기 보여줘",
		"좋은 거 추천해줘",
		"search for a katana",
		"find me a weapon",
		"show me your items",
		"Recommend something good",
		"what ITEMS do you have?",
	}
	for _, message := range cases {
		intent := ClassifyIntent(message, nil)
		if intent.Kind != IntentSearch {
			t.Fatalf("%q: expected search intent, got %v", message, intent.Kind)
		}
		if intent.Query != message {
			t.Fatalf("%q: query should carry the original text, got %q", message, intent.Query)
		}
	}
}

func TestClassifyIntentCatalogTerms(t *testing.T) {
	terms := []string{"카타나", "moonlight katana", "pistol"}

	if intent := ClassifyIntent("카타나 얼마야?", terms); intent.Kind != IntentSearch {
		t.Fatal("mentioning a product name should classify as search")
	}
	if intent := ClassifyIntent("Do you sell a Moonlight Katana?", terms); intent.Kind != IntentSearch {
		t.Fatal("catalog term matching should be case-insensitive")
	}
	if intent := ClassifyIntent("배송은 얼마나 걸려?", terms); intent.Kind != IntentModel {
		t.Fatal("plain questions should go to the model")
	}
}
