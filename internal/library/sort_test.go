package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNames() []string {
	return []string{"01.png", "04.png", "08.png", "09.png", "2.png", "３.png"}
}

func TestSortStrategies(t *testing.T) {
	tests := []struct {
		strategy SortStrategy
		name     string
		id       int
		want     []string
	}{
		{&NaturalSortStrategy{}, "Natural", SortNatural, []string{"01.png", "2.png", "04.png", "08.png", "09.png", "３.png"}},
		{&SimpleSortStrategy{}, "Simple", SortSimple, []string{"01.png", "04.png", "08.png", "09.png", "2.png", "３.png"}},
		{&EntryOrderSortStrategy{}, "Entry Order", SortEntryOrder, testNames()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.strategy.Name())
			assert.Equal(t, tt.id, tt.strategy.ID())

			input := testNames()
			assert.Equal(t, tt.want, tt.strategy.Sort(input))
			assert.Equal(t, testNames(), input, "input must not be modified")

			assert.Empty(t, tt.strategy.Sort(nil))
			assert.NotNil(t, tt.strategy.Sort(nil))
		})
	}
}

func TestNaturalSortChapters(t *testing.T) {
	got := (&NaturalSortStrategy{}).Sort([]string{"Chapter 10", "Chapter 2", "Chapter 1"})
	assert.Equal(t, []string{"Chapter 1", "Chapter 2", "Chapter 10"}, got)
}

func TestGetSortStrategy(t *testing.T) {
	assert.Equal(t, SortNatural, GetSortStrategy(SortNatural).ID())
	assert.Equal(t, SortSimple, GetSortStrategy(SortSimple).ID())
	assert.Equal(t, SortEntryOrder, GetSortStrategy(SortEntryOrder).ID())
	assert.Equal(t, SortNatural, GetSortStrategy(99).ID(), "unknown ids fall back to natural")
	assert.Len(t, GetAllSortStrategies(), 3)
}

func TestParseSortMethod(t *testing.T) {
	for name, want := range map[string]int{"natural": SortNatural, "": SortNatural, "simple": SortSimple, "entry": SortEntryOrder} {
		got, ok := ParseSortMethod(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got)
	}
	_, ok := ParseSortMethod("random")
	assert.False(t, ok)
}
