package musicbrainz

// minNameSimilarity gates candidates returned for a fallback query.
const minNameSimilarity = 0.55

// bestCandidate returns the first candidate whose normalized name is close
// enough to query.
func bestCandidate(query string, candidates []mbArtist) (mbArtist, bool) {
	want := normalizeSearchInput(query)
	if want == "" {
		return mbArtist{}, false
	}
	for _, c := range candidates {
		got := normalizeSearchInput(c.Name)
		if got == "" {
			continue
		}
		if similarity(want, got) >= minNameSimilarity {
			return c, true
		}
	}
	return mbArtist{}, false
}

func similarity(a string, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(a string, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		copy(prev, curr)
	}

	return prev[len(rb)]
}
