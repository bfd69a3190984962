package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownGeneration is returned for a generation key outside the table.
var ErrUnknownGeneration = errors.New("catalog: unknown generation")

// Generation is a fixed listing range grouping entries by release batch.
type Generation struct {
	Key    string
	Label  string
	Offset int
	Limit  int
}

// FirstID is the first id covered by the generation.
func (g Generation) FirstID() int { return g.Offset + 1 }

// LastID is the last id covered by the generation, inclusive.
func (g Generation) LastID() int { return g.Offset + g.Limit }

// Generations is the static range table covering the known catalog.
var Generations = []Generation{
	{Key: "1", Label: "Generation 1", Offset: 0, Limit: 151},
	{Key: "2", Label: "Generation 2", Offset: 151, Limit: 100},
	{Key: "3", Label: "Generation 3", Offset: 251, Limit: 135},
	{Key: "4", Label: "Generation 4", Offset: 386, Limit: 107},
	{Key: "5", Label: "Generation 5", Offset: 493, Limit: 156},
	{Key: "6", Label: "Generation 6", Offset: 649, Limit: 72},
	{Key: "7", Label: "Generation 7", Offset: 721, Limit: 88},
	{Key: "8", Label: "Generation 8", Offset: 809, Limit: 96},
	{Key: "9", Label: "Generation 9", Offset: 905, Limit: 120},
	{Key: "10", Label: "Special forms", Offset: 1025, Limit: 277},
}

// LookupGeneration returns the generation with the given key.
func LookupGeneration(key string) (Generation, error) {
	for _, g := range Generations {
		if g.Key == key {
			return g, nil
		}
	}
	return Generation{}, fmt.Errorf("%w: %q", ErrUnknownGeneration, key)
}
