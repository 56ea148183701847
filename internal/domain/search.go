package domain

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"unicode"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0

	// Whole title equals the query
	ScoreExactTitleBonus = 200.0

	// Links not read yet come first on ties
	ScoreUnvisitedBonus = 1.0
)

// Query represents a parsed search input
type Query struct {
	Raw       string   // Original input, lowercased
	Fragments []string // Space-separated fragments
}

// ParseQuery parses user input into a structured query
// Example: "Go Docs" -> ["go", "docs"]
func ParseQuery(input string) Query {
	input = strings.TrimSpace(strings.ToLower(input))
	return Query{
		Raw:       input,
		Fragments: strings.Fields(input),
	}
}

// Candidate is a hyperlink with its match score
type Candidate struct {
	Hyperlink Hyperlink
	Score     float64
}

// Score calculates the match score of a hyperlink against a query.
// Every query fragment must match a title word, a host label or a path
// segment, otherwise the score is 0.
func Score(q Query, h Hyperlink) float64 {
	if len(q.Fragments) == 0 {
		return 0.0
	}

	if strings.EqualFold(strings.TrimSpace(h.Title), q.Raw) {
		return ScoreExactMatch + ScoreExactTitleBonus + unvisitedBonus(h)
	}

	words := linkFragments(h)
	if len(words) == 0 {
		return 0.0
	}

	var total float64
	for _, qFrag := range q.Fragments {
		best := 0.0
		for i, w := range words {
			if score := scoreFragment(qFrag, w, i); score > best {
				best = score
			}
		}
		if best == 0.0 {
			return 0.0
		}
		total += best
	}

	return total + unvisitedBonus(h)
}

// Rank returns the visible hyperlinks matching the query, best first.
// Ties keep the newest-first order.
func Rank(q Query, list []Hyperlink) []Candidate {
	candidates := make([]Candidate, 0, len(list))

	for _, h := range list {
		if !h.Visible() {
			continue
		}
		score := Score(q, h)
		if score == 0.0 {
			continue
		}
		candidates = append(candidates, Candidate{Hyperlink: h, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// linkFragments lists the words a query can hit, title first:
// "Go docs" + https://go.dev/doc/effective -> [go docs go dev doc effective]
func linkFragments(h Hyperlink) []string {
	var out []string
	out = append(out, splitWords(h.Title)...)

	u, err := url.Parse(h.URL)
	if err != nil {
		return append(out, splitWords(h.URL)...)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	out = append(out, strings.Split(host, ".")...)
	out = append(out, splitWords(u.Path)...)
	return out
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// scoreFragment scores a single query fragment against a link fragment
func scoreFragment(queryFrag, linkFrag string, position int) float64 {
	queryFrag = normalizeFragment(queryFrag)
	linkFrag = normalizeFragment(linkFrag)

	if queryFrag == "" || linkFrag == "" {
		return 0.0
	}

	// Exact match
	if queryFrag == linkFrag {
		return ScoreExactMatch + calculatePositionBonus(position)
	}

	// Prefix match
	if strings.HasPrefix(linkFrag, queryFrag) {
		return ScorePrefixMatch + calculatePositionBonus(position)
	}

	// Substring match
	if index := strings.Index(linkFrag, queryFrag); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(linkFrag)))
		return ScoreSubstringMatch + substringBonus
	}

	// Fuzzy match, only for fragments long enough to mean something
	if len(queryFrag) >= 4 {
		if similarity := calculateSimilarity(queryFrag, linkFrag); similarity > 0.8 {
			return ScoreFuzzyMatch * similarity
		}
	}

	return 0.0
}

// calculatePositionBonus gives bonus for earlier positions
func calculatePositionBonus(position int) float64 {
	return ScorePositionBonus * math.Exp(-float64(position)*0.3)
}

// calculateSimilarity is the ratio of query characters found in s2
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	matches := 0
	for _, c := range s1 {
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}

	return float64(matches) / float64(len([]rune(s1)))
}

func normalizeFragment(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}

func unvisitedBonus(h Hyperlink) float64 {
	if h.Visited {
		return 0.0
	}
	return ScoreUnvisitedBonus
}
