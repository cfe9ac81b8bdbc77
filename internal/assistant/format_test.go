package assistant

import "testing"

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		units int
		want  string
	}{
		{0, "₩0"},
		{900, "₩900"},
		{1500, "₩1,500"},
		{2400000, "₩2,400,000"},
		{-800000, "-₩800,000"},
	}
	for _, tc := range cases {
		if got := formatPrice(tc.units); got != tc.want {
			t.Fatalf("formatPrice(%d) = %q, want %q", tc.units, got, tc.want)
		}
	}
}

func TestParseOrdinal(t *testing.T) {
	ordinals := map[string]int{
		"#1":     1,
		"# 2":    2,
		"2nd":    2,
		"3rd":    3,
		"item 2": 2,
		"2번째":    2,
		"두번째":    2,
	}
	for ref, want := range ordinals {
		n, ok := parseOrdinal(ref)
		if !ok || n != want {
			t.Fatalf("parseOrdinal(%q) = (%d, %v), want (%d, true)", ref, n, ok, want)
		}
	}

	// Bare digits are product ids, not ordinals.
	for _, ref := range []string{"2", "42", "카타나", "second thoughts"} {
		if _, ok := parseOrdinal(ref); ok {
			t.Fatalf("parseOrdinal(%q) should not match", ref)
		}
	}
}
