package suggest

import "sort"

// Rank orders suggestions shortest first and scores them 1.0, 0.9, 0.8, ...
// by position. Equal lengths keep their input order. Scores go negative
// past the tenth entry; callers truncate before that matters.
func Rank(s []Suggestion) []Suggestion {
	sort.SliceStable(s, func(i, j int) bool {
		return len(s[i].Text) < len(s[j].Text)
	})
	for i := range s {
		s[i].Score = 1.0 - 0.1*float64(i)
	}
	return s
}
