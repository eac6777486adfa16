package persistence

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kitabu/kitabu/internal/domain"
)

// ActorRepository implements ports.ActorRepository on postgres.
type ActorRepository struct {
	db runner
}

// NewActorRepository creates an actor repository.
func NewActorRepository(db *sql.DB) *ActorRepository {
	return &ActorRepository{db: db}
}

func (r *ActorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	query := `
        INSERT INTO actors (id, name, email, password_hash, role, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.db.ExecContext(ctx, query,
		actor.ID, actor.Name, actor.Email, actor.PasswordHash, actor.Role, actor.CreatedAt,
	)
	if err != nil {
		return storeErr("create actor", err)
	}
	return nil
}

func (r *ActorRepository) FindByID(ctx context.Context, id string) (*domain.Actor, error) {
	query := `SELECT id, name, email, password_hash, role, created_at FROM actors WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *ActorRepository) FindByEmail(ctx context.Context, email string) (*domain.Actor, error) {
	query := `SELECT id, name, email, password_hash, role, created_at FROM actors WHERE email = $1`
	return r.scanOne(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

func (r *ActorRepository) scanOne(ctx context.Context, query, key string) (*domain.Actor, error) {
	var a domain.Actor
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "actor", ID: key}
	}
	if err != nil {
		return nil, storeErr("find actor", err)
	}
	return &a, nil
}
