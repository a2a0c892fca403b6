// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"slices"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult is the outcome of one fuzzy match. Score is zero when the
// pattern does not match.
type FuzzyResult struct {
	Score int

	// Positions are the rune indices in the text of the matched
	// characters, ascending.
	Positions []int
}

// NewFuzzySlab allocates scratch space for FuzzyMatch. Reusing one slab
// across the lines of a search avoids an allocation per line; a nil
// slab is also accepted.
func NewFuzzySlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyMatch scores text against pattern with fzf's optimal-alignment
// algorithm. Matching is case-insensitive: both sides are lowercased
// before matching.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 || text == "" {
		return FuzzyResult{}
	}
	lowerPattern := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(strings.ToLower(text)))

	result, positions := algo.FuzzyMatchV2(false, false, true, &chars, lowerPattern, true, slab)
	if result.Start < 0 || result.Score <= 0 {
		return FuzzyResult{}
	}

	var matched []int
	if positions != nil {
		matched = slices.Clone(*positions)
		slices.Sort(matched)
	}
	return FuzzyResult{Score: result.Score, Positions: matched}
}
