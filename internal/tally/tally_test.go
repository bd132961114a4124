package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aasfg1234/vote-system/internal/domain"
)

func twoOptions() []domain.Option {
	return []domain.Option{
		{ID: 0, Text: "Yes"},
		{ID: 1, Text: "No"},
	}
}

func TestComputeEmptyLedger(t *testing.T) {
	result := Compute(twoOptions(), domain.VoterLedger{})

	assert.Equal(t, 0, result.TotalVotes)
	require.Len(t, result.Options, 2)
	for _, opt := range result.Options {
		assert.Equal(t, 0, opt.Count)
		assert.Equal(t, 0, opt.Percent)
	}
}

func TestComputeCountsVotersNotSelections(t *testing.T) {
	ledger := domain.VoterLedger{
		"dev-1": {Username: "Alice", Votes: []int{0, 1}},
		"dev-2": {Username: "Bob", Votes: []int{1}},
		"dev-3": {Username: "Carol", Votes: []int{}},
	}

	result := Compute(twoOptions(), ledger)

	assert.Equal(t, 2, result.TotalVotes, "only entries with votes count")
	assert.Equal(t, 1, result.Options[0].Count)
	assert.Equal(t, 2, result.Options[1].Count)
}

func TestComputePercentages(t *testing.T) {
	ledger := domain.VoterLedger{
		"dev-1": {Username: "Alice", Votes: []int{0}},
		"dev-2": {Username: "Bob", Votes: []int{1}},
	}

	result := Compute(twoOptions(), ledger)

	assert.Equal(t, 50, result.Options[0].Percent)
	assert.Equal(t, 50, result.Options[1].Percent)

	for _, opt := range result.Options {
		assert.GreaterOrEqual(t, opt.Percent, 0)
		assert.LessOrEqual(t, opt.Percent, 100)
	}
}

func TestComputeRoundsPercent(t *testing.T) {
	ledger := domain.VoterLedger{
		"dev-1": {Username: "a", Votes: []int{0}},
		"dev-2": {Username: "b", Votes: []int{0}},
		"dev-3": {Username: "c", Votes: []int{1}},
	}

	result := Compute(twoOptions(), ledger)

	assert.Equal(t, 67, result.Options[0].Percent)
	assert.Equal(t, 33, result.Options[1].Percent)
}

func TestComputeVoterMap(t *testing.T) {
	ledger := domain.VoterLedger{
		"dev-1": {Username: "Alice", Votes: []int{0}},
		"dev-2": {Username: "Bob", Votes: []int{1}},
	}

	result := Compute(twoOptions(), ledger)

	assert.ElementsMatch(t, []string{"Alice"}, result.VoterMap[0])
	assert.ElementsMatch(t, []string{"Bob"}, result.VoterMap[1])
}

func TestComputeIgnoresStaleOptionIDs(t *testing.T) {
	ledger := domain.VoterLedger{
		"dev-1": {Username: "Alice", Votes: []int{0, 5, -1}},
	}

	result := Compute(twoOptions(), ledger)

	assert.Equal(t, 1, result.TotalVotes)
	assert.Equal(t, 1, result.Options[0].Count)
	assert.Equal(t, 0, result.Options[1].Count)
}

func TestComputeCountsDuplicateSelectionsOnce(t *testing.T) {
	ledger := domain.VoterLedger{
		"dev-1": {Username: "Alice", Votes: []int{0, 0, 0}},
		"dev-2": {Username: "Bob", Votes: []int{1, 1}},
	}

	result := Compute(twoOptions(), ledger)

	assert.Equal(t, 2, result.TotalVotes)
	assert.Equal(t, 1, result.Options[0].Count)
	assert.Equal(t, 1, result.Options[1].Count)
	assert.Equal(t, 50, result.Options[0].Percent)
	assert.ElementsMatch(t, []string{"Alice"}, result.VoterMap[0])
}

func TestBlindedRedactsCountsOnly(t *testing.T) {
	ledger := domain.VoterLedger{
		"dev-1": {Username: "Alice", Votes: []int{0}},
	}

	result := Compute(twoOptions(), ledger)
	blinded := result.Blinded()

	require.Len(t, blinded, 2)
	for i, opt := range blinded {
		assert.Equal(t, Hidden, opt.Count)
		assert.Equal(t, Hidden, opt.Percent)
		assert.Equal(t, result.Options[i].Text, opt.Text)
		assert.Equal(t, result.Options[i].ID, opt.ID)
	}

	// the original result is untouched
	assert.Equal(t, 1, result.Options[0].Count)
}
