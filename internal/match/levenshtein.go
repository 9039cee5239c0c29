package match

// Levenshtein distance and the normalized similarity derived from it.
// The matcher deliberately uses its own implementation rather than a fuzzy
// matching library: libraries differ subtly in metric and normalization,
// and header resolution must be reproducible byte-for-byte across versions.

// levenshtein returns the edit distance between a and b, counted in runes.
func levenshtein(a, b string) int {
	ar := []rune(a)
	br := []rune(b)

	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	// Keep the inner loop over the shorter string.
	if len(br) > len(ar) {
		ar, br = br, ar
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}

	for i, ca := range ar {
		curr[0] = i + 1
		for j, cb := range br {
			ins := curr[j] + 1
			del := prev[j+1] + 1
			sub := prev[j]
			if ca != cb {
				sub++
			}
			curr[j+1] = minOf(ins, del, sub)
		}
		prev, curr = curr, prev
	}

	return prev[len(br)]
}

// similarity maps edit distance into [0,1]: 1 − dist/max(len(a), len(b)).
// Two empty strings are defined as identical.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	denom := la
	if lb > denom {
		denom = lb
	}
	if denom == 0 {
		return 1
	}
	s := 1 - float64(levenshtein(a, b))/float64(denom)
	if s < 0 {
		return 0
	}
	return s
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
