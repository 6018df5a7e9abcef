package game

import (
	"context"

	"memoryatlas/internal/domain"
)

// randomCitySource draws uniformly from the world-city catalog. Cities may
// repeat within a session, so used source ids are ignored.
type randomCitySource struct {
	catalog Catalog
}

func (s *randomCitySource) Mode() domain.GameMode {
	return domain.GameModeRandom
}

func (s *randomCitySource) NextLocation(ctx context.Context, _ *domain.GameSession, _ []int64) (*domain.MemoryLocation, error) {
	return s.catalog.RandomCity(ctx)
}
