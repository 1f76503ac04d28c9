package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionPredicate(t *testing.T) {
	qs := []Question{
		{ID: "1", Text: "Channels vs mutexes", Weight: 2, UnitID: "go", LevelID: "senior"},
		{ID: "2", Text: "Index selectivity", Weight: 1, UnitID: "db", LevelID: "senior"},
		{ID: "3", Text: "Buffered channels", Weight: 1, UnitID: "go", LevelID: "junior"},
	}

	ids := func(in []Question) []string {
		out := []string{}
		for _, q := range in {
			out = append(out, q.ID)
		}
		return out
	}

	tests := []struct {
		name      string
		f         QuestionFilter
		minWeight float64
		want      []string
	}{
		{"no filters", QuestionFilter{}, 0, []string{"1", "2", "3"}},
		{"text is case insensitive", QuestionFilter{TextSearch: "CHANNELS"}, 0, []string{"1", "3"}},
		{"unit and level", QuestionFilter{UnitID: "go", LevelID: "senior"}, 0, []string{"1"}},
		{"min weight", QuestionFilter{}, 1.5, []string{"1"}},
		{"nothing matches", QuestionFilter{GroupID: "none"}, 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(qs, QuestionPredicate(tt.f, tt.minWeight))))
		})
	}
}

func TestCombinators(t *testing.T) {
	even := Predicate[int](func(n int) bool { return n%2 == 0 })
	big := Predicate[int](func(n int) bool { return n > 3 })
	nums := []int{1, 2, 3, 4, 5, 6}

	assert.Equal(t, []int{4, 6}, Filter(nums, All(even, big)))
	assert.Equal(t, []int{2, 4, 5, 6}, Filter(nums, Any(even, big)))
	assert.Equal(t, []int{1, 3, 5}, Filter(nums, Not(even)))
	assert.Equal(t, nums, Filter(nums, Any[int]()))
	assert.Equal(t, nums, Filter(nums, nil))
}
