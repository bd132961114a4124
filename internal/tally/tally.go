// Package tally recomputes poll results from the voter ledger. Results
// are never maintained incrementally: every state change recomputes from
// scratch, so the broadcast is trivially consistent with the ledger.
package tally

import (
	"math"

	"github.com/aasfg1234/vote-system/internal/domain"
)

// Hidden is the sentinel wire value for counts and percentages that
// blind mode withholds from participants.
const Hidden = -1

type OptionResult struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Color   string `json:"color"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

type Result struct {
	// TotalVotes counts ledger entries with at least one selection, not
	// the number of selections (multi-select casts several per entry).
	TotalVotes int
	Options    []OptionResult
	// VoterMap is the host-only option -> voter display names roster.
	VoterMap map[int][]string
}

// Compute tallies the ledger against the current option list. Votes
// referencing option ids outside the current list are ignored, and a
// record counts at most once per option.
func Compute(options []domain.Option, ledger domain.VoterLedger) Result {
	counts := make([]int, len(options))
	voterMap := make(map[int][]string)
	total := 0

	for _, record := range ledger {
		if len(record.Votes) == 0 {
			continue
		}
		total++
		counted := make(map[int]bool, len(record.Votes))
		for _, optID := range record.Votes {
			if optID < 0 || optID >= len(options) || counted[optID] {
				continue
			}
			counted[optID] = true
			counts[optID]++
			voterMap[optID] = append(voterMap[optID], record.Username)
		}
	}

	results := make([]OptionResult, len(options))
	for i, opt := range options {
		results[i] = OptionResult{
			ID:      opt.ID,
			Text:    opt.Text,
			Color:   opt.Color,
			Count:   counts[i],
			Percent: percent(counts[i], total),
		}
	}

	return Result{
		TotalVotes: total,
		Options:    results,
		VoterMap:   voterMap,
	}
}

// Blinded returns the option list with counts and percentages replaced
// by the Hidden sentinel. Texts and colors stay visible.
func (r Result) Blinded() []OptionResult {
	blinded := make([]OptionResult, len(r.Options))
	for i, opt := range r.Options {
		opt.Count = Hidden
		opt.Percent = Hidden
		blinded[i] = opt
	}
	return blinded
}

func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
