package game

import (
	"context"
	"errors"

	"memoryatlas/internal/domain"
)

// ErrSourceExhausted is returned by a Source (and by Catalog lookups) when
// no further question can be produced for the session. The orchestrator
// treats it as early completion, not as a failure.
var ErrSourceExhausted = errors.New("question source exhausted")

// Catalog is the read side the sources draw from: memories with images and
// the world-city table. Implemented by repository.MemoryRepository.
type Catalog interface {
	// RandomOwnedMemory picks one of ownerID's memories that has a location
	// and at least one image, skipping excluded memory ids.
	RandomOwnedMemory(ctx context.Context, ownerID int64, excluded []int64) (*domain.MemoryLocation, error)

	// RandomPublicMemory picks any public memory with a location and images,
	// optionally constrained to targetMemberID's memories.
	RandomPublicMemory(ctx context.Context, targetMemberID *int64, excluded []int64) (*domain.MemoryLocation, error)

	// RandomCity picks a city from the world catalog.
	RandomCity(ctx context.Context) (*domain.MemoryLocation, error)
}

// Source produces the ground truth for the next question of a session.
// One implementation per game mode.
type Source interface {
	Mode() domain.GameMode
	NextLocation(ctx context.Context, session *domain.GameSession, usedSourceIDs []int64) (*domain.MemoryLocation, error)
}
