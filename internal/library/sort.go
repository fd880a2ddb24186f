package library

import (
	"sort"

	"github.com/maruel/natural"
)

// Sort method identifiers, as stored in configuration.
const (
	SortNatural    = 0 // file1, file2, file10
	SortSimple     = 1 // lexicographical
	SortEntryOrder = 2 // directory or archive order
)

// SortStrategy orders image and chapter names.
type SortStrategy interface {
	// Sort returns a new sorted slice without modifying the original
	Sort(names []string) []string
	// Name returns the human-readable name of the strategy
	Name() string
	// ID returns the numeric identifier for config storage
	ID() int
}

// NaturalSortStrategy orders digit runs numerically using maruel/natural.
type NaturalSortStrategy struct{}

func (s *NaturalSortStrategy) Sort(names []string) []string {
	result := clone(names)
	sort.SliceStable(result, func(i, j int) bool {
		return natural.Less(result[i], result[j])
	})
	return result
}

func (s *NaturalSortStrategy) Name() string { return "Natural" }
func (s *NaturalSortStrategy) ID() int      { return SortNatural }

// SimpleSortStrategy implements lexicographical sorting
type SimpleSortStrategy struct{}

func (s *SimpleSortStrategy) Sort(names []string) []string {
	result := clone(names)
	sort.Strings(result)
	return result
}

func (s *SimpleSortStrategy) Name() string { return "Simple" }
func (s *SimpleSortStrategy) ID() int      { return SortSimple }

// EntryOrderSortStrategy preserves the original order
type EntryOrderSortStrategy struct{}

func (s *EntryOrderSortStrategy) Sort(names []string) []string {
	return clone(names)
}

func (s *EntryOrderSortStrategy) Name() string { return "Entry Order" }
func (s *EntryOrderSortStrategy) ID() int      { return SortEntryOrder }

func clone(names []string) []string {
	result := make([]string, len(names))
	copy(result, names)
	return result
}

// GetSortStrategy returns the strategy for id, falling back to natural order.
func GetSortStrategy(id int) SortStrategy {
	switch id {
	case SortSimple:
		return &SimpleSortStrategy{}
	case SortEntryOrder:
		return &EntryOrderSortStrategy{}
	default:
		return &NaturalSortStrategy{}
	}
}

// GetAllSortStrategies returns all available sort strategies
func GetAllSortStrategies() []SortStrategy {
	return []SortStrategy{
		&NaturalSortStrategy{},
		&SimpleSortStrategy{},
		&EntryOrderSortStrategy{},
	}
}

// ParseSortMethod maps a config name to its identifier.
func ParseSortMethod(name string) (int, bool) {
	switch name {
	case "natural", "":
		return SortNatural, true
	case "simple":
		return SortSimple, true
	case "entry":
		return SortEntryOrder, true
	default:
		return SortNatural, false
	}
}
