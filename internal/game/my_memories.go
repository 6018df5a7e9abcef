package game

import (
	"context"

	"memoryatlas/internal/domain"
)

// myMemoriesSource draws from the player's own memories with images.
type myMemoriesSource struct {
	catalog Catalog
}

func (s *myMemoriesSource) Mode() domain.GameMode {
	return domain.GameModeMyMemories
}

func (s *myMemoriesSource) NextLocation(ctx context.Context, session *domain.GameSession, usedSourceIDs []int64) (*domain.MemoryLocation, error) {
	return s.catalog.RandomOwnedMemory(ctx, session.MemberID, usedSourceIDs)
}
