package game

import (
	"context"

	"memoryatlas/internal/domain"
)

// memoriesRandomSource draws from any public memory with images, narrowed
// to the target member's memories when the session has one.
type memoriesRandomSource struct {
	catalog Catalog
}

func (s *memoriesRandomSource) Mode() domain.GameMode {
	return domain.GameModeMemoriesRandom
}

func (s *memoriesRandomSource) NextLocation(ctx context.Context, session *domain.GameSession, usedSourceIDs []int64) (*domain.MemoryLocation, error) {
	return s.catalog.RandomPublicMemory(ctx, session.TargetMemberID, usedSourceIDs)
}
