package gormrepo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/spec-kit/amelio/internal/domain"
	"github.com/spec-kit/amelio/internal/repository"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

type ticketNamesRow struct {
	Ticket      ticketModel `gorm:"embedded"`
	CourseName  string
	CreatorName string
}

type ticketRepository struct {
	db *gorm.DB
	tx repository.Transactor
}

// NewTicketRepository creates a GORM-backed ticket repository.
func NewTicketRepository(db *gorm.DB) repository.TicketRepository {
	return &ticketRepository{db: db, tx: NewTransactor(db)}
}

func (r *ticketRepository) Create(ctx context.Context, ticket domain.NewTicket, priority domain.Priority, medium domain.Medium) (int64, error) {
	if medium == nil || medium.Kind() != ticket.Type.Medium() {
		return 0, apperrors.NewValidationError("medium does not match ticket type", map[string]any{"type": ticket.Type})
	}

	model := ticketModel{
		Type:        ticket.Type.String(),
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    ticket.Category.String(),
		Priority:    priority.String(),
		Status:      domain.StatusOpen.String(),
		CourseID:    ticket.CourseID,
		CreatorID:   ticket.CreatorID,
	}

	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		db := getTx(ctx, r.db)
		if err := db.Create(&model).Error; err != nil {
			return apperrors.NewPersistenceError(err)
		}
		mediumModel, err := toMediumModel(model.ID, medium)
		if err != nil {
			return err
		}
		return apperrors.NewPersistenceError(db.Create(mediumModel).Error)
	})
	if err != nil {
		return 0, err
	}
	return model.ID, nil
}

func toMediumModel(ticketID int64, medium domain.Medium) (any, error) {
	switch m := medium.(type) {
	case domain.MediumText:
		return &mediumTextModel{TicketID: ticketID, Page: m.Page, Line: m.Line}, nil
	case domain.MediumRecording:
		return &mediumRecordingModel{TicketID: ticketID, Time: m.Time.String()}, nil
	case domain.MediumInteractive:
		return &mediumInteractiveModel{TicketID: ticketID, URL: m.URL}, nil
	case domain.MediumQuestionaire:
		return &mediumQuestionaireModel{TicketID: ticketID, Question: m.Question, Answer: m.Answer}, nil
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported medium %T", medium), nil)
	}
}

func (r *ticketRepository) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	var model ticketModel
	if err := getTx(ctx, r.db).First(&model, id).Error; err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": id})
	}
	ticket, err := model.toDomain()
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) withNames(ctx context.Context) *gorm.DB {
	return getTx(ctx, r.db).
		Table("tickets AS t").
		Select("t.*, c.title AS course_name, u.name AS creator_name").
		Joins("JOIN courses c ON c.id = t.course_id").
		Joins("JOIN users u ON u.id = t.creator_id")
}

func (r *ticketRepository) GetWithNames(ctx context.Context, id int64) (*domain.TicketWithNames, error) {
	var rows []ticketNamesRow
	if err := r.withNames(ctx).Where("t.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	result, err := rows[0].toDomain()
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ticketRepository) GetWithRels(ctx context.Context, id int64) (*domain.TicketWithRels, error) {
	withNames, err := r.GetWithNames(ctx, id)
	if err != nil {
		return nil, err
	}
	medium, err := r.loadMedium(ctx, id, withNames.Type.Medium())
	if err != nil {
		return nil, err
	}
	comments, err := listComments(getTx(ctx, r.db), id)
	if err != nil {
		return nil, err
	}
	return &domain.TicketWithRels{
		TicketWithNames: *withNames,
		Medium:          medium,
		Comments:        comments,
	}, nil
}

func (r *ticketRepository) loadMedium(ctx context.Context, ticketID int64, kind domain.MediumKind) (domain.Medium, error) {
	db := getTx(ctx, r.db)
	details := map[string]any{"ticket_id": ticketID, "kind": kind}
	switch kind {
	case domain.MediumKindText:
		var m mediumTextModel
		if err := db.First(&m, "ticket_id = ?", ticketID).Error; err != nil {
			return nil, notFoundOr(err, "medium", details)
		}
		return domain.MediumText{Page: m.Page, Line: m.Line}, nil
	case domain.MediumKindRecording:
		var m mediumRecordingModel
		if err := db.First(&m, "ticket_id = ?", ticketID).Error; err != nil {
			return nil, notFoundOr(err, "medium", details)
		}
		tod, err := domain.ParseTimeOfDay(m.Time)
		if err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		return domain.MediumRecording{Time: tod}, nil
	case domain.MediumKindInteractive:
		var m mediumInteractiveModel
		if err := db.First(&m, "ticket_id = ?", ticketID).Error; err != nil {
			return nil, notFoundOr(err, "medium", details)
		}
		return domain.MediumInteractive{URL: m.URL}, nil
	case domain.MediumKindQuestionaire:
		var m mediumQuestionaireModel
		if err := db.First(&m, "ticket_id = ?", ticketID).Error; err != nil {
			return nil, notFoundOr(err, "medium", details)
		}
		return domain.MediumQuestionaire{Question: m.Question, Answer: m.Answer}, nil
	default:
		return nil, apperrors.NewPersistenceError(fmt.Errorf("unknown medium kind %q", kind))
	}
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	var models []ticketModel
	if err := getTx(ctx, r.db).Order("id DESC").Find(&models).Error; err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	tickets := make([]domain.Ticket, 0, len(models))
	for _, m := range models {
		ticket, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

func (r *ticketRepository) ListWithNames(ctx context.Context) ([]domain.TicketWithNames, error) {
	return r.scanWithNames(r.withNames(ctx))
}

func (r *ticketRepository) ListByCreatorID(ctx context.Context, creatorID int64) ([]domain.TicketWithNames, error) {
	return r.scanWithNames(r.withNames(ctx).Where("t.creator_id = ?", creatorID))
}

func (r *ticketRepository) ListByAssigneeID(ctx context.Context, assigneeID int64) ([]domain.TicketWithNames, error) {
	query := r.withNames(ctx).
		Where("(c.tutor_id = ? AND NOT t.forwarded) OR (c.author_id = ? AND t.forwarded)", assigneeID, assigneeID)
	return r.scanWithNames(query)
}

func (r *ticketRepository) Search(ctx context.Context, criteria repository.SearchCriteria) ([]domain.TicketWithNames, error) {
	query := r.withNames(ctx)
	if criteria.Title != nil && *criteria.Title != "" {
		query = query.Where("instr(lower(t.title), lower(?)) > 0", *criteria.Title)
	}
	if criteria.CourseID != nil {
		query = query.Where("t.course_id = ?", *criteria.CourseID)
	}
	if criteria.Category != nil {
		query = query.Where("t.category = ?", criteria.Category.String())
	}
	if criteria.Priority != nil {
		query = query.Where("t.priority = ?", criteria.Priority.String())
	}
	if criteria.Status != nil {
		query = query.Where("t.status = ?", criteria.Status.String())
	}
	return r.scanWithNames(query)
}

func (r *ticketRepository) scanWithNames(query *gorm.DB) ([]domain.TicketWithNames, error) {
	var rows []ticketNamesRow
	if err := query.Order("t.id DESC").Scan(&rows).Error; err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	result := make([]domain.TicketWithNames, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func (r *ticketRepository) Update(ctx context.Context, id int64, priority domain.Priority) error {
	return r.setColumn(ctx, id, "priority", priority.String())
}

func (r *ticketRepository) Forward(ctx context.Context, id int64) error {
	return r.setColumn(ctx, id, "forwarded", true)
}

func (r *ticketRepository) SetStatus(ctx context.Context, id int64, status domain.Status) error {
	return r.setColumn(ctx, id, "status", status.String())
}

func (r *ticketRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.Status) (bool, error) {
	result := getTx(ctx, r.db).Model(&ticketModel{}).
		Where("id = ? AND status = ?", id, from.String()).
		Update("status", to.String())
	if result.Error != nil {
		return false, apperrors.NewPersistenceError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *ticketRepository) setColumn(ctx context.Context, id int64, column string, value any) error {
	result := getTx(ctx, r.db).Model(&ticketModel{}).Where("id = ?", id).Update(column, value)
	return requireOneRow(result, "ticket", map[string]any{"ticket_id": id})
}

func (r *ticketRepository) IsCreator(ctx context.Context, id, userID int64) (bool, error) {
	var count int64
	err := getTx(ctx, r.db).Model(&ticketModel{}).
		Where("id = ? AND creator_id = ?", id, userID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.NewPersistenceError(err)
	}
	return count > 0, nil
}

func (r *ticketRepository) GetStatus(ctx context.Context, id int64) (domain.Status, error) {
	var model ticketModel
	if err := getTx(ctx, r.db).Select("id", "status").First(&model, id).Error; err != nil {
		return "", notFoundOr(err, "ticket", map[string]any{"ticket_id": id})
	}
	status, err := domain.ParseStatus(model.Status)
	if err != nil {
		return "", apperrors.NewPersistenceError(err)
	}
	return status, nil
}

func (m ticketModel) toDomain() (domain.Ticket, error) {
	ty, err := domain.ParseTicketType(m.Type)
	if err != nil {
		return domain.Ticket{}, apperrors.NewPersistenceError(err)
	}
	category, err := domain.ParseCategory(m.Category)
	if err != nil {
		return domain.Ticket{}, apperrors.NewPersistenceError(err)
	}
	priority, err := domain.ParsePriority(m.Priority)
	if err != nil {
		return domain.Ticket{}, apperrors.NewPersistenceError(err)
	}
	status, err := domain.ParseStatus(m.Status)
	if err != nil {
		return domain.Ticket{}, apperrors.NewPersistenceError(err)
	}
	return domain.Ticket{
		ID:          m.ID,
		Type:        ty,
		Title:       m.Title,
		Description: m.Description,
		Category:    category,
		Priority:    priority,
		Status:      status,
		CourseID:    m.CourseID,
		CreatorID:   m.CreatorID,
		Forwarded:   m.Forwarded,
	}, nil
}

func (row ticketNamesRow) toDomain() (domain.TicketWithNames, error) {
	ticket, err := row.Ticket.toDomain()
	if err != nil {
		return domain.TicketWithNames{}, err
	}
	return domain.TicketWithNames{
		Ticket:      ticket,
		CourseName:  row.CourseName,
		CreatorName: row.CreatorName,
	}, nil
}
