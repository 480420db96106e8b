// Package transition aligns the tokens of consecutive scenes and synthesizes
// the drawable tokens of each in-between frame.
package transition

import (
	"github.com/adelrodriguez/sakuga/internal/scene"
	"github.com/adelrodriguez/sakuga/internal/token"
)

// Match pairs a token of the outgoing scene with its counterpart in the
// incoming scene.
type Match struct {
	From scene.LayoutToken
	To   scene.LayoutToken
}

// Identical reports whether both sides show the same text in the same style.
func (m Match) Identical() bool {
	return keyOf(m.From) == keyOf(m.To)
}

// Diff partitions two token sequences. Every outgoing token is in exactly one
// of Matched.From or Removed; every incoming token is in exactly one of
// Matched.To or Added.
type Diff struct {
	Matched []Match
	Added   []scene.LayoutToken
	Removed []scene.LayoutToken
}

// pass matches what it can and hands the leftovers to the next pass.
type pass func(from, to []scene.LayoutToken) (matched []Match, restFrom, restTo []scene.LayoutToken)

// passes run in order: ordered alignment, then nearest same-text, then
// nearest same-category.
var passes = []pass{alignSequences, matchNearestByContent, matchNearestByCategory}

// DiffScenes diffs the reading-order tokens of two scenes.
func DiffScenes(from, to scene.Scene) Diff {
	return DiffTokens(from.Tokens(), to.Tokens())
}

// DiffTokens computes the matched, added and removed tokens between two
// layouts.
func DiffTokens(from, to []scene.LayoutToken) Diff {
	var d Diff
	restFrom, restTo := from, to
	for _, p := range passes {
		var matched []Match
		matched, restFrom, restTo = p(restFrom, restTo)
		d.Matched = append(d.Matched, matched...)
	}
	d.Removed = restFrom
	d.Added = restTo
	return d
}

type tokenKey struct {
	content   string
	fontStyle token.FontStyle
}

func keyOf(t scene.LayoutToken) tokenKey {
	return tokenKey{content: t.Content, fontStyle: t.FontStyle}
}

// alignSequences runs a longest-common-subsequence alignment over
// (content, fontStyle). The table is filled from the end so the walk that
// recovers matches moves forward; on ties the outgoing side advances.
func alignSequences(from, to []scene.LayoutToken) ([]Match, []scene.LayoutToken, []scene.LayoutToken) {
	n, m := len(from), len(to)
	if n == 0 || m == 0 {
		return nil, from, to
	}

	fromKeys := make([]tokenKey, n)
	for i, t := range from {
		fromKeys[i] = keyOf(t)
	}
	toKeys := make([]tokenKey, m)
	for j, t := range to {
		toKeys[j] = keyOf(t)
	}

	stride := m + 1
	table := make([]int32, (n+1)*stride)
	at := func(i, j int) int32 { return table[i*stride+j] }
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if fromKeys[i] == toKeys[j] {
				table[i*stride+j] = at(i+1, j+1) + 1
			} else {
				table[i*stride+j] = max(at(i+1, j), at(i, j+1))
			}
		}
	}

	matchedFrom := make([]bool, n)
	matchedTo := make([]bool, m)
	matched := make([]Match, 0, at(0, 0))
	for i, j := 0, 0; i < n && j < m; {
		switch {
		case fromKeys[i] == toKeys[j]:
			matched = append(matched, Match{From: from[i], To: to[j]})
			matchedFrom[i], matchedTo[j] = true, true
			i++
			j++
		case at(i+1, j) >= at(i, j+1):
			i++
		default:
			j++
		}
	}

	return matched, unmatched(from, matchedFrom), unmatched(to, matchedTo)
}

func matchNearestByContent(from, to []scene.LayoutToken) ([]Match, []scene.LayoutToken, []scene.LayoutToken) {
	return matchNearest(from, to, func(t scene.LayoutToken) (tokenKey, bool) {
		return keyOf(t), true
	})
}

// matchNearestByCategory lets a token retarget onto a different token of the
// same kind. Uncategorized tokens never take part.
func matchNearestByCategory(from, to []scene.LayoutToken) ([]Match, []scene.LayoutToken, []scene.LayoutToken) {
	return matchNearest(from, to, func(t scene.LayoutToken) (token.Category, bool) {
		return t.Category, t.Category != token.CategoryOther && t.Category != ""
	})
}

// matchNearest greedily pairs each outgoing token, in order, with the closest
// unused incoming token sharing its group. Tokens for which group reports
// false are left unmatched.
func matchNearest[K comparable](
	from, to []scene.LayoutToken,
	group func(scene.LayoutToken) (K, bool),
) ([]Match, []scene.LayoutToken, []scene.LayoutToken) {
	if len(from) == 0 || len(to) == 0 {
		return nil, from, to
	}

	candidates := make(map[K][]int)
	for j, t := range to {
		if k, ok := group(t); ok {
			candidates[k] = append(candidates[k], j)
		}
	}

	matchedFrom := make([]bool, len(from))
	matchedTo := make([]bool, len(to))
	var matched []Match
	for i, t := range from {
		k, ok := group(t)
		if !ok {
			continue
		}
		best := -1
		bestDistance := 0
		for _, j := range candidates[k] {
			if matchedTo[j] {
				continue
			}
			d := distance(t, to[j])
			if best < 0 || d < bestDistance {
				best, bestDistance = j, d
			}
		}
		if best < 0 {
			continue
		}
		matched = append(matched, Match{From: t, To: to[best]})
		matchedFrom[i], matchedTo[best] = true, true
	}

	return matched, unmatched(from, matchedFrom), unmatched(to, matchedTo)
}

// distance weighs a line change far above any horizontal offset.
func distance(a, b scene.LayoutToken) int {
	return abs(a.Y-b.Y)*1000 + abs(a.X-b.X)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func unmatched(tokens []scene.LayoutToken, matched []bool) []scene.LayoutToken {
	var rest []scene.LayoutToken
	for i, t := range tokens {
		if !matched[i] {
			rest = append(rest, t)
		}
	}
	return rest
}
