package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/amelio/internal/domain"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

const userColumns = `u.id, u.username, u.password_hash, u.name, u.role, u.active, u.code`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, password_hash, name, role, active, code)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`

	if err := conn(ctx, r.pool).QueryRow(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.Active,
		user.Code,
	).Scan(&user.ID); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id=$1`
	return r.findOne(ctx, query, map[string]any{"user_id": id}, id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.username=$1`
	return r.findOne(ctx, query, map[string]any{"username": username}, username)
}

func (r *userRepository) FindByCode(ctx context.Context, code string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.code=$1 AND u.code <> ''`
	return r.findOne(ctx, query, map[string]any{"code": code}, code)
}

func (r *userRepository) FindTicketCreator(ctx context.Context, ticketID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u JOIN tickets t ON t.creator_id = u.id WHERE t.id=$1`
	return r.findOne(ctx, query, map[string]any{"ticket_id": ticketID}, ticketID)
}

func (r *userRepository) findOne(ctx context.Context, query string, details map[string]any, args ...any) (*domain.User, error) {
	user, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapRowError(err, "user", details)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+userColumns+` FROM users u ORDER BY u.name ASC`)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		users = append(users, *user)
	}
	return users, apperrors.NewPersistenceError(rows.Err())
}

func (r *userRepository) Activate(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE users SET password_hash=$1, active=TRUE, code='' WHERE id=$2`
	tag, err := conn(ctx, r.pool).Exec(ctx, query, passwordHash, id)
	return requireOneRow(tag, err, "user", map[string]any{"user_id": id})
}

func (r *userRepository) ListNamesByRole(ctx context.Context, role domain.Role) ([]domain.UserName, error) {
	const query = `SELECT id, name FROM users WHERE role=$1 AND active ORDER BY name ASC`

	rows, err := conn(ctx, r.pool).Query(ctx, query, role)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	defer rows.Close()

	var names []domain.UserName
	for rows.Next() {
		var n domain.UserName
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		names = append(names, n)
	}
	return names, apperrors.NewPersistenceError(rows.Err())
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, apperrors.NewPersistenceError(err)
	}
	return count, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var role string
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Name,
		&role,
		&user.Active,
		&user.Code,
	); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	user.Role = parsed
	return &user, nil
}
