package repository

import (
	"context"
	"errors"

	"memoryatlas/internal/domain"
	"memoryatlas/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MemoryRepository is the engine's read side of the memory and city data
// owned by the rest of the application. It implements game.Catalog.
type MemoryRepository struct {
	db *pgxpool.Pool
}

func NewMemoryRepository(db *pgxpool.Pool) *MemoryRepository {
	return &MemoryRepository{db: db}
}

func scanLocation(row pgx.Row) (*domain.MemoryLocation, error) {
	loc := &domain.MemoryLocation{}
	err := row.Scan(&loc.SourceID, &loc.Latitude, &loc.Longitude, &loc.Name, &loc.MediaRefs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, game.ErrSourceExhausted
		}
		return nil, err
	}
	return loc, nil
}

// RandomOwnedMemory picks one of the member's located memories that has at
// least one image, skipping ids already used this session.
func (r *MemoryRepository) RandomOwnedMemory(ctx context.Context, ownerID int64, excluded []int64) (*domain.MemoryLocation, error) {
	if excluded == nil {
		excluded = []int64{}
	}
	return scanLocation(r.db.QueryRow(ctx,
		`SELECT m.id, m.latitude, m.longitude, COALESCE(m.location_name, ''),
		        array_agg(mi.image_ref ORDER BY mi.position)
		 FROM memories m
		 JOIN memory_images mi ON mi.memory_id = m.id
		 WHERE m.member_id = $1
		   AND m.latitude IS NOT NULL AND m.longitude IS NOT NULL
		   AND NOT (m.id = ANY($2))
		 GROUP BY m.id
		 ORDER BY random()
		 LIMIT 1`,
		ownerID, excluded))
}

// RandomPublicMemory picks any public located memory with images, narrowed
// to one member's memories when targetMemberID is set.
func (r *MemoryRepository) RandomPublicMemory(ctx context.Context, targetMemberID *int64, excluded []int64) (*domain.MemoryLocation, error) {
	if excluded == nil {
		excluded = []int64{}
	}
	return scanLocation(r.db.QueryRow(ctx,
		`SELECT m.id, m.latitude, m.longitude, COALESCE(m.location_name, ''),
		        array_agg(mi.image_ref ORDER BY mi.position)
		 FROM memories m
		 JOIN memory_images mi ON mi.memory_id = m.id
		 WHERE m.is_public
		   AND m.latitude IS NOT NULL AND m.longitude IS NOT NULL
		   AND ($1::bigint IS NULL OR m.member_id = $1)
		   AND NOT (m.id = ANY($2))
		 GROUP BY m.id
		 ORDER BY random()
		 LIMIT 1`,
		targetMemberID, excluded))
}

// RandomCity picks a city uniformly from the seeded world catalog. Cities
// carry no member media, so the refs come back empty.
func (r *MemoryRepository) RandomCity(ctx context.Context) (*domain.MemoryLocation, error) {
	loc := &domain.MemoryLocation{MediaRefs: []string{}}
	err := r.db.QueryRow(ctx,
		`SELECT id, latitude, longitude, name || ', ' || country
		 FROM world_cities
		 ORDER BY random()
		 LIMIT 1`,
	).Scan(&loc.SourceID, &loc.Latitude, &loc.Longitude, &loc.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, game.ErrSourceExhausted
		}
		return nil, err
	}
	return loc, nil
}
