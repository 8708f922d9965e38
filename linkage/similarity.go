package linkage

// Similarity returns a normalized edit similarity between two strings in
// [0,1], using the Ratcliff-Obershelp measure: twice the number of matching
// characters (longest common substring, applied recursively to the pieces on
// either side of it) divided by the total length of both strings.
//
// The 0.90 fuzzy-match floor used by the engine is calibrated against this
// measure; swapping in a different similarity requires recalibrating that
// floor together with the confidence formula.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ar := []rune(a)
	br := []rune(b)
	if len(ar) == 0 || len(br) == 0 {
		return 0.0
	}

	matched := matchingChars(ar, br)
	return 2.0 * float64(matched) / float64(len(ar)+len(br))
}

// matchingChars counts matched characters recursively: the longest common
// substring, plus the matches in the unmatched regions to its left and right.
func matchingChars(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}

	matched := size
	matched += matchingChars(a[:ai], b[:bi])
	matched += matchingChars(a[ai+size:], b[bi+size:])
	return matched
}

// longestCommonSubstring returns the start offsets and length of the longest
// run of characters common to a and b. Ties resolve to the leftmost run in a
// so repeated calls are deterministic.
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] == b[j] {
				curr[j+1] = prev[j] + 1
				if curr[j+1] > size {
					size = curr[j+1]
					ai = i - size + 1
					bi = j - size + 1
				}
			} else {
				curr[j+1] = 0
			}
		}
		prev, curr = curr, prev
	}

	return ai, bi, size
}
