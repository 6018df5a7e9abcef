package game

import (
	"errors"
	"fmt"

	"memoryatlas/internal/domain"
)

// ErrUnsupportedMode is returned for modes without a registered source.
var ErrUnsupportedMode = errors.New("unsupported game mode")

// Factory resolves a game mode to its question source. The variant set is
// closed; all three sources are built once at startup.
type Factory struct {
	sources map[domain.GameMode]Source
}

func NewFactory(catalog Catalog) *Factory {
	f := &Factory{sources: make(map[domain.GameMode]Source)}
	for _, s := range []Source{
		&myMemoriesSource{catalog: catalog},
		&randomCitySource{catalog: catalog},
		&memoriesRandomSource{catalog: catalog},
	} {
		f.sources[s.Mode()] = s
	}
	return f
}

// Source returns the question source for the mode.
func (f *Factory) Source(mode domain.GameMode) (Source, error) {
	s, ok := f.sources[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
	return s, nil
}
