package repository

import (
	"context"

	"memoryatlas/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	m := &domain.Member{}
	err := r.db.QueryRow(ctx,
		`SELECT id, nickname, created_at FROM members WHERE id = $1`, id,
	).Scan(&m.ID, &m.Nickname, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}
