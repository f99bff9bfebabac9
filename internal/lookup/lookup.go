// Package lookup implements "did you mean" suggestions (spec.md §4.8) over
// known identifiers — typedef names, dialect spellings, keyword tokens.
// Grounded on the teacher's internal/core/fuzzy.go levenshteinDistance, a
// classic DP-matrix edit distance; extended here with the transposition case
// (Damerau-Levenshtein) because adjacent-letter typos ("cosnt" for "const")
// are the dominant real-world miss in a keyword-heavy grammar.
package lookup

import "sort"

// Distance computes the Damerau-Levenshtein edit distance (insert, delete,
// substitute, adjacent transpose) between a and b, operating on runes so
// multi-byte identifiers are measured correctly.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// d[i][j] = distance between ra[:i] and rb[:j].
	d := make([][]int, la+1)
	for i := range d {
		d[i] = make([]int, lb+1)
		d[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		d[0][j] = j
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := d[i-1][j] + 1
			ins := d[i][j-1] + 1
			sub := d[i-1][j-1] + cost
			best := min3(del, ins, sub)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if trans := d[i-2][j-2] + cost; trans < best {
					best = trans
				}
			}
			d[i][j] = best
		}
	}
	return d[la][lb]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Threshold returns the maximum distance considered "close enough" to
// suggest, given the length of the misspelled token: max(1, len/4),
// matching the teacher's fuzzy resolver's proportional tolerance.
func Threshold(token string) int {
	n := len([]rune(token))
	t := n / 4
	if t < 1 {
		t = 1
	}
	return t
}

// Suggestion is one ranked candidate.
type Suggestion struct {
	Candidate string
	Distance  int
}

// Suggest ranks every candidate within max(1, min(len(token), len(c))/4) of
// token — the smaller of Threshold(token) and Threshold(c) — nearest first
// and alphabetically among ties (spec.md §4.8). Returns nil if nothing
// qualifies.
func Suggest(token string, candidates []string) []Suggestion {
	var out []Suggestion
	for _, c := range candidates {
		if c == token {
			continue
		}
		threshold := Threshold(token)
		if ct := Threshold(c); ct < threshold {
			threshold = ct
		}
		dist := Distance(token, c)
		if dist <= threshold {
			out = append(out, Suggestion{Candidate: c, Distance: dist})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Candidate < out[j].Candidate
	})
	return out
}

// Best returns the single best suggestion for token among candidates, or ""
// if none qualifies — the shape most diagnostics want ("did you mean %q?").
func Best(token string, candidates []string) string {
	s := Suggest(token, candidates)
	if len(s) == 0 {
		return ""
	}
	return s[0].Candidate
}
