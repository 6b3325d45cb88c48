package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/amelio/internal/domain"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository returns a Postgres-backed implementation.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (code, title, author_id, tutor_id, active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`

	if err := conn(ctx, r.pool).QueryRow(ctx, query,
		course.Code,
		course.Title,
		course.AuthorID,
		course.TutorID,
		course.Active,
	).Scan(&course.ID); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

func (r *courseRepository) Get(ctx context.Context, id int64) (*domain.Course, error) {
	const query = `SELECT id, code, title, author_id, tutor_id, active FROM courses WHERE id=$1`

	var c domain.Course
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Code,
		&c.Title,
		&c.AuthorID,
		&c.TutorID,
		&c.Active,
	); err != nil {
		return nil, mapRowError(err, "course", map[string]any{"course_id": id})
	}
	return &c, nil
}

func (r *courseRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE courses SET active=$1 WHERE id=$2`, active, id)
	return requireOneRow(tag, err, "course", map[string]any{"course_id": id})
}

func (r *courseRepository) ListNames(ctx context.Context) ([]domain.CourseName, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT id, code, title FROM courses WHERE active ORDER BY code ASC`)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	defer rows.Close()

	var names []domain.CourseName
	for rows.Next() {
		var n domain.CourseName
		if err := rows.Scan(&n.ID, &n.Code, &n.Title); err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		names = append(names, n)
	}
	return names, apperrors.NewPersistenceError(rows.Err())
}

func (r *courseRepository) ListWithNames(ctx context.Context) ([]domain.CourseWithNames, error) {
	const query = `
        SELECT c.id, c.code, c.title, c.author_id, c.tutor_id, c.active, a.name, tu.name
        FROM courses c
        JOIN users a ON a.id = c.author_id
        JOIN users tu ON tu.id = c.tutor_id
        ORDER BY c.code ASC`

	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	defer rows.Close()

	var courses []domain.CourseWithNames
	for rows.Next() {
		var c domain.CourseWithNames
		if err := rows.Scan(
			&c.ID,
			&c.Code,
			&c.Title,
			&c.AuthorID,
			&c.TutorID,
			&c.Active,
			&c.AuthorName,
			&c.TutorName,
		); err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		courses = append(courses, c)
	}
	return courses, apperrors.NewPersistenceError(rows.Err())
}
