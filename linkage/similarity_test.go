package linkage_test

import (
	"math"
	"testing"

	"catlink/linkage"
)

func TestSimilarity_Identical(t *testing.T) {
	if got := linkage.Similarity("floral midi dress", "floral midi dress"); got != 1.0 {
		t.Errorf("Similarity(identical) = %v, want 1.0", got)
	}
}

func TestSimilarity_Empty(t *testing.T) {
	if got := linkage.Similarity("", "floral midi dress"); got != 0.0 {
		t.Errorf("Similarity(\"\", s) = %v, want 0.0", got)
	}
	if got := linkage.Similarity("floral midi dress", ""); got != 0.0 {
		t.Errorf("Similarity(s, \"\") = %v, want 0.0", got)
	}
	if got := linkage.Similarity("", ""); got != 1.0 {
		t.Errorf("Similarity(\"\", \"\") = %v, want 1.0", got)
	}
}

func TestSimilarity_Disjoint(t *testing.T) {
	if got := linkage.Similarity("abc", "xyz"); got != 0.0 {
		t.Errorf("Similarity(disjoint) = %v, want 0.0", got)
	}
}

func TestSimilarity_OneCharTypo(t *testing.T) {
	// 16 common chars out of 17+16 total: 2*16/33
	got := linkage.Similarity("floral midi dress", "floral midi dres")
	want := 2.0 * 16.0 / 33.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Similarity(typo) = %v, want %v", got, want)
	}
	if got < 0.96 || got > 0.98 {
		t.Errorf("Similarity(typo) = %v, want within [0.96, 0.98]", got)
	}
}

func TestSimilarity_KnownRatio(t *testing.T) {
	// 9 matching chars across two 10-char strings: 2*9/20 = 0.90
	got := linkage.Similarity("abcdefghij", "abcdefghix")
	if math.Abs(got-0.90) > 1e-9 {
		t.Errorf("Similarity = %v, want 0.90", got)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"floral midi dress", "floral midi dres"},
		{"silk slip skirt", "satin slip skirt"},
		{"wool coat", "wool overcoat"},
	}
	for _, p := range pairs {
		ab := linkage.Similarity(p[0], p[1])
		ba := linkage.Similarity(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Similarity(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarity_Range(t *testing.T) {
	pairs := [][2]string{
		{"a", "ab"},
		{"ribbed knit tank", "ribbed knit tank top"},
		{"denim jacket", "leather jacket"},
	}
	for _, p := range pairs {
		got := linkage.Similarity(p[0], p[1])
		if got < 0.0 || got > 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://r.example/a/dp/ABCD-1234", "r.example/a/dp/ABCD-1234"},
		{"https://r.example/a/dp/ABCD-1234?color=red", "r.example/a/dp/ABCD-1234"},
		{"https://r.example/a/dp/ABCD-1234/", "r.example/a/dp/ABCD-1234"},
		{"https://r.example/a/dp/ABCD-1234?a=1#frag", "r.example/a/dp/ABCD-1234"},
		{"https://r.example/", "r.example"},
	}
	for _, c := range cases {
		if got := linkage.NormalizeURL(c.in); got != c.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeURL_CaseSensitivePath(t *testing.T) {
	a := linkage.NormalizeURL("https://r.example/a/dp/ABCD-1234")
	b := linkage.NormalizeURL("https://r.example/a/dp/abcd-1234")
	if a == b {
		t.Error("NormalizeURL should keep path case-sensitive")
	}
}
