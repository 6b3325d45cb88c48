package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/repository"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a GORM-backed comment repository.
func NewCommentRepository(db *gorm.DB) repository.CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.Timestamp.IsZero() {
		comment.Timestamp = time.Now().UTC()
	}
	model := commentModel{
		TicketID:  comment.TicketID,
		CreatorID: comment.CreatorID,
		Timestamp: comment.Timestamp,
		Message:   comment.Message,
	}
	if err := getTx(ctx, r.db).Create(&model).Error; err != nil {
		return apperrors.NewPersistenceError(err)
	}
	comment.ID = model.ID
	return nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.CommentWithName, error) {
	return listComments(getTx(ctx, r.db), ticketID)
}

type commentNameRow struct {
	ID          int64
	TicketID    int64
	CreatorID   int64
	Timestamp   time.Time
	Message     string
	CreatorName string
}

func listComments(db *gorm.DB, ticketID int64) ([]domain.CommentWithName, error) {
	var rows []commentNameRow
	err := db.Table("comments AS cm").
		Select("cm.*, u.name AS creator_name").
		Joins("JOIN users u ON u.id = cm.creator_id").
		Where("cm.ticket_id = ?", ticketID).
		Order("cm.timestamp ASC, cm.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	comments := make([]domain.CommentWithName, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, domain.CommentWithName{
			Comment: domain.Comment{
				ID:        row.ID,
				TicketID:  row.TicketID,
				CreatorID: row.CreatorID,
				Timestamp: row.Timestamp,
				Message:   row.Message,
			},
			CreatorName: row.CreatorName,
		})
	}
	return comments, nil
}
