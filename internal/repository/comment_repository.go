package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/amelio/internal/domain"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository returns a Postgres-backed implementation.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.Timestamp.IsZero() {
		comment.Timestamp = time.Now().UTC()
	}

	const query = `
        INSERT INTO comments (ticket_id, creator_id, timestamp, message)
        VALUES ($1,$2,$3,$4)
        RETURNING id`

	if err := conn(ctx, r.pool).QueryRow(ctx, query,
		comment.TicketID,
		comment.CreatorID,
		comment.Timestamp,
		comment.Message,
	).Scan(&comment.ID); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.CommentWithName, error) {
	return listComments(ctx, conn(ctx, r.pool), ticketID)
}

func listComments(ctx context.Context, db querier, ticketID int64) ([]domain.CommentWithName, error) {
	const query = `
        SELECT cm.id, cm.ticket_id, cm.creator_id, cm.timestamp, cm.message, u.name
        FROM comments cm
        JOIN users u ON u.id = cm.creator_id
        WHERE cm.ticket_id=$1
        ORDER BY cm.timestamp ASC, cm.id ASC`

	rows, err := db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	defer rows.Close()

	var comments []domain.CommentWithName
	for rows.Next() {
		var c domain.CommentWithName
		if err := rows.Scan(&c.ID, &c.TicketID, &c.CreatorID, &c.Timestamp, &c.Message, &c.CreatorName); err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		comments = append(comments, c)
	}
	return comments, apperrors.NewPersistenceError(rows.Err())
}
