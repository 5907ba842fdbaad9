// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package query

// autojunkMinLen is the length of b from which characters occurring in more
// than 1% of positions are excluded from match seeding.
const autojunkMinLen = 200

// Ratio returns the sequence-matcher similarity of a and b in [0, 1]:
// 2*M/T where M is the number of characters in the matching blocks found by
// recursive longest-common-substring decomposition and T is the total number
// of characters in both strings. Two empty strings have ratio 1.
//
// The comparison is rune-based and case-sensitive; callers fold case first.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	m := newSequenceMatcher(ra, rb)
	return 2.0 * float64(m.matchingCharacters()) / float64(total)
}

type sequenceMatcher struct {
	a, b    []rune
	b2j     map[rune][]int
	popular map[rune]bool
}

func newSequenceMatcher(a, b []rune) *sequenceMatcher {
	m := &sequenceMatcher{a: a, b: b, b2j: make(map[rune][]int, len(b))}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}

	if n := len(b); n >= autojunkMinLen {
		limit := n/100 + 1
		m.popular = make(map[rune]bool)
		for r, idx := range m.b2j {
			if len(idx) > limit {
				m.popular[r] = true
				delete(m.b2j, r)
			}
		}
	}
	return m
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside
// a[alo:ahi] and b[blo:bhi]. Among equally long blocks it returns the one
// starting earliest in a, and of those the one starting earliest in b.
func (m *sequenceMatcher) longestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	// Popular characters were not indexed; grow the block across them.
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestk = besti-1, bestj-1, bestk+1
	}
	for besti+bestk < ahi && bestj+bestk < bhi && m.a[besti+bestk] == m.b[bestj+bestk] {
		bestk++
	}
	return besti, bestj, bestk
}

func (m *sequenceMatcher) matchingCharacters() int {
	type span struct{ alo, ahi, blo, bhi int }

	matched := 0
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}
