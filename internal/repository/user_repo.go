package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"task-manager/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
// Cada mutacion de la lista de tokens es un UPDATE de una sola sentencia
// sobre la fila del usuario, asi la escritura queda durable de forma atomica.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, user domain.User) error
	AppendToken(ctx context.Context, id, token string) error
	RemoveToken(ctx context.Context, id, token string) error
	ClearTokens(ctx context.Context, id string) error
	UpdateAvatar(ctx context.Context, id string, avatar []byte) error
	Delete(ctx context.Context, id string) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, name, email, age, password_hash, tokens, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	tokens := user.Tokens
	if tokens == nil {
		tokens = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Age,
		user.PasswordHash,
		tokens,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, name, email, age, password_hash, avatar, tokens, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, name, email, age, password_hash, avatar, tokens, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, user domain.User) error {
	const query = `
		UPDATE users
		SET name = $2, email = $3, age = $4, password_hash = $5
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Age,
		user.PasswordHash,
	)
	return err
}

func (r *PgUserRepository) AppendToken(ctx context.Context, id, token string) error {
	const query = `
		UPDATE users
		SET tokens = array_append(tokens, $2)
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, token)
	return err
}

func (r *PgUserRepository) RemoveToken(ctx context.Context, id, token string) error {
	const query = `
		UPDATE users
		SET tokens = array_remove(tokens, $2)
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, token)
	return err
}

func (r *PgUserRepository) ClearTokens(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET tokens = '{}'
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgUserRepository) UpdateAvatar(ctx context.Context, id string, avatar []byte) error {
	const query = `
		UPDATE users
		SET avatar = $2
		WHERE id = $1
	`
	var value interface{}
	if len(avatar) > 0 {
		value = avatar
	}
	_, err := r.pool.Exec(ctx, query, id, value)
	return err
}

func (r *PgUserRepository) Delete(ctx context.Context, id string) error {
	const query = `
		DELETE FROM users
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

type row interface {
	Scan(dest ...any) error
}

func (r *PgUserRepository) scanUser(rw row) (domain.User, error) {
	var u domain.User
	var avatar []byte
	var tokens []string

	err := rw.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Age,
		&u.PasswordHash,
		&avatar,
		&tokens,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.Avatar = avatar
	u.Tokens = tokens
	return u, nil
}
