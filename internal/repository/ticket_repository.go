package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/amelio/internal/domain"
	apperrors "github.com/spec-kit/amelio/pkg/util/errorutil"
)

const ticketColumns = `t.id, t.type, t.title, t.description, t.category, t.priority, t.status,
               t.course_id, t.creator_id, t.forwarded`

const ticketWithNamesSelect = `
        SELECT ` + ticketColumns + `, c.title, u.name
        FROM tickets t
        JOIN courses c ON c.id = t.course_id
        JOIN users u ON u.id = t.creator_id`

type ticketRepository struct {
	pool *pgxpool.Pool
	tx   Transactor
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool, tx: NewTransactor(pool)}
}

func (r *ticketRepository) Create(ctx context.Context, ticket domain.NewTicket, priority domain.Priority, medium domain.Medium) (int64, error) {
	if medium == nil || medium.Kind() != ticket.Type.Medium() {
		return 0, apperrors.NewValidationError("medium does not match ticket type", map[string]any{"type": ticket.Type})
	}

	var id int64
	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		const query = `
        INSERT INTO tickets (type, title, description, category, priority, status, course_id, creator_id, forwarded)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,FALSE)
        RETURNING id`
		if err := conn(ctx, r.pool).QueryRow(ctx, query,
			ticket.Type,
			ticket.Title,
			ticket.Description,
			ticket.Category,
			priority,
			domain.StatusOpen,
			ticket.CourseID,
			ticket.CreatorID,
		).Scan(&id); err != nil {
			return apperrors.NewPersistenceError(err)
		}
		return r.insertMedium(ctx, id, medium)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ticketRepository) insertMedium(ctx context.Context, ticketID int64, medium domain.Medium) error {
	db := conn(ctx, r.pool)
	var err error
	switch m := medium.(type) {
	case domain.MediumText:
		_, err = db.Exec(ctx, `INSERT INTO medium_texts (ticket_id, page, line) VALUES ($1,$2,$3)`, ticketID, m.Page, m.Line)
	case domain.MediumRecording:
		_, err = db.Exec(ctx, `INSERT INTO medium_recordings (ticket_id, time) VALUES ($1,$2)`, ticketID, m.Time.String())
	case domain.MediumInteractive:
		_, err = db.Exec(ctx, `INSERT INTO medium_interactives (ticket_id, url) VALUES ($1,$2)`, ticketID, m.URL)
	case domain.MediumQuestionaire:
		_, err = db.Exec(ctx, `INSERT INTO medium_questionaires (ticket_id, question, answer) VALUES ($1,$2,$3)`, ticketID, m.Question, m.Answer)
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unsupported medium %T", medium), nil)
	}
	return apperrors.NewPersistenceError(err)
}

func (r *ticketRepository) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id=$1`
	var row ticketRow
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(row.dest()...); err != nil {
		return nil, mapRowError(err, "ticket", map[string]any{"ticket_id": id})
	}
	ticket, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) GetWithNames(ctx context.Context, id int64) (*domain.TicketWithNames, error) {
	var row ticketRow
	var result domain.TicketWithNames
	dest := append(row.dest(), &result.CourseName, &result.CreatorName)
	if err := conn(ctx, r.pool).QueryRow(ctx, ticketWithNamesSelect+` WHERE t.id=$1`, id).Scan(dest...); err != nil {
		return nil, mapRowError(err, "ticket", map[string]any{"ticket_id": id})
	}
	ticket, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	result.Ticket = ticket
	return &result, nil
}

func (r *ticketRepository) GetWithRels(ctx context.Context, id int64) (*domain.TicketWithRels, error) {
	withNames, err := r.GetWithNames(ctx, id)
	if err != nil {
		return nil, err
	}
	medium, err := r.loadMedium(ctx, withNames.ID, withNames.Type.Medium())
	if err != nil {
		return nil, err
	}
	comments, err := listComments(ctx, conn(ctx, r.pool), id)
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
	db := conn(ctx, r.pool)
	details := map[string]any{"ticket_id": ticketID, "kind": kind}
	switch kind {
	case domain.MediumKindText:
		var m domain.MediumText
		if err := db.QueryRow(ctx, `SELECT page, line FROM medium_texts WHERE ticket_id=$1`, ticketID).Scan(&m.Page, &m.Line); err != nil {
			return nil, mapRowError(err, "medium", details)
		}
		return m, nil
	case domain.MediumKindRecording:
		var raw string
		if err := db.QueryRow(ctx, `SELECT time FROM medium_recordings WHERE ticket_id=$1`, ticketID).Scan(&raw); err != nil {
			return nil, mapRowError(err, "medium", details)
		}
		tod, err := domain.ParseTimeOfDay(raw)
		if err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		return domain.MediumRecording{Time: tod}, nil
	case domain.MediumKindInteractive:
		var m domain.MediumInteractive
		if err := db.QueryRow(ctx, `SELECT url FROM medium_interactives WHERE ticket_id=$1`, ticketID).Scan(&m.URL); err != nil {
			return nil, mapRowError(err, "medium", details)
		}
		return m, nil
	case domain.MediumKindQuestionaire:
		var m domain.MediumQuestionaire
		if err := db.QueryRow(ctx, `SELECT question, answer FROM medium_questionaires WHERE ticket_id=$1`, ticketID).Scan(&m.Question, &m.Answer); err != nil {
			return nil, mapRowError(err, "medium", details)
		}
		return m, nil
	default:
		return nil, apperrors.NewPersistenceError(fmt.Errorf("unknown medium kind %q", kind))
	}
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+ticketColumns+` FROM tickets t ORDER BY t.id DESC`)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var row ticketRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		ticket, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, apperrors.NewPersistenceError(rows.Err())
}

func (r *ticketRepository) ListWithNames(ctx context.Context) ([]domain.TicketWithNames, error) {
	return r.queryWithNames(ctx, ticketWithNamesSelect+` ORDER BY t.id DESC`)
}

func (r *ticketRepository) ListByCreatorID(ctx context.Context, creatorID int64) ([]domain.TicketWithNames, error) {
	return r.queryWithNames(ctx, ticketWithNamesSelect+` WHERE t.creator_id=$1 ORDER BY t.id DESC`, creatorID)
}

func (r *ticketRepository) ListByAssigneeID(ctx context.Context, assigneeID int64) ([]domain.TicketWithNames, error) {
	const where = `
        WHERE (c.tutor_id=$1 AND NOT t.forwarded) OR (c.author_id=$1 AND t.forwarded)
        ORDER BY t.id DESC`
	return r.queryWithNames(ctx, ticketWithNamesSelect+where, assigneeID)
}

func (r *ticketRepository) Search(ctx context.Context, criteria SearchCriteria) ([]domain.TicketWithNames, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if criteria.Title != nil && *criteria.Title != "" {
		args = append(args, *criteria.Title)
		clauses = append(clauses, fmt.Sprintf("strpos(LOWER(t.title), LOWER($%d)) > 0", len(args)))
	}
	if criteria.CourseID != nil {
		args = append(args, *criteria.CourseID)
		clauses = append(clauses, fmt.Sprintf("t.course_id=$%d", len(args)))
	}
	if criteria.Category != nil {
		args = append(args, *criteria.Category)
		clauses = append(clauses, fmt.Sprintf("t.category=$%d", len(args)))
	}
	if criteria.Priority != nil {
		args = append(args, *criteria.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if criteria.Status != nil {
		args = append(args, *criteria.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.id DESC`, ticketWithNamesSelect, strings.Join(clauses, " AND "))
	return r.queryWithNames(ctx, query, args...)
}

func (r *ticketRepository) queryWithNames(ctx context.Context, query string, args ...any) ([]domain.TicketWithNames, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	defer rows.Close()
	return scanTicketsWithNames(rows)
}

func (r *ticketRepository) Update(ctx context.Context, id int64, priority domain.Priority) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE tickets SET priority=$1 WHERE id=$2`, priority, id)
	return requireOneRow(tag, err, "ticket", map[string]any{"ticket_id": id})
}

func (r *ticketRepository) Forward(ctx context.Context, id int64) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE tickets SET forwarded=TRUE WHERE id=$1`, id)
	return requireOneRow(tag, err, "ticket", map[string]any{"ticket_id": id})
}

func (r *ticketRepository) SetStatus(ctx context.Context, id int64, status domain.Status) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE tickets SET status=$1 WHERE id=$2`, status, id)
	return requireOneRow(tag, err, "ticket", map[string]any{"ticket_id": id})
}

func (r *ticketRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.Status) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE tickets SET status=$1 WHERE id=$2 AND status=$3`, to, id, from)
	if err != nil {
		return false, apperrors.NewPersistenceError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ticketRepository) IsCreator(ctx context.Context, id, userID int64) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM tickets WHERE id=$1 AND creator_id=$2)`
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id, userID).Scan(&exists); err != nil {
		return false, apperrors.NewPersistenceError(err)
	}
	return exists, nil
}

func (r *ticketRepository) GetStatus(ctx context.Context, id int64) (domain.Status, error) {
	var raw string
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT status FROM tickets WHERE id=$1`, id).Scan(&raw); err != nil {
		return "", mapRowError(err, "ticket", map[string]any{"ticket_id": id})
	}
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return "", apperrors.NewPersistenceError(err)
	}
	return status, nil
}

// ticketRow holds the raw column values of a tickets row before enum parsing.
type ticketRow struct {
	id          int64
	ty          string
	title       string
	description string
	category    string
	priority    string
	status      string
	courseID    int64
	creatorID   int64
	forwarded   bool
}

func (row *ticketRow) dest() []any {
	return []any{
		&row.id,
		&row.ty,
		&row.title,
		&row.description,
		&row.category,
		&row.priority,
		&row.status,
		&row.courseID,
		&row.creatorID,
		&row.forwarded,
	}
}

func (row *ticketRow) toDomain() (domain.Ticket, error) {
	ty, err := domain.ParseTicketType(row.ty)
	if err != nil {
		return domain.Ticket{}, apperrors.NewPersistenceError(err)
	}
	category, err := domain.ParseCategory(row.category)
	if err != nil {
		return domain.Ticket{}, apperrors.NewPersistenceError(err)
	}
	priority, err := domain.ParsePriority(row.priority)
	if err != nil {
		return domain.Ticket{}, apperrors.NewPersistenceError(err)
	}
	status, err := domain.ParseStatus(row.status)
	if err != nil {
		return domain.Ticket{}, apperrors.NewPersistenceError(err)
	}
	return domain.Ticket{
		ID:          row.id,
		Type:        ty,
		Title:       row.title,
		Description: row.description,
		Category:    category,
		Priority:    priority,
		Status:      status,
		CourseID:    row.courseID,
		CreatorID:   row.creatorID,
		Forwarded:   row.forwarded,
	}, nil
}

func scanTicketsWithNames(rows pgx.Rows) ([]domain.TicketWithNames, error) {
	var result []domain.TicketWithNames
	for rows.Next() {
		var row ticketRow
		var item domain.TicketWithNames
		dest := append(row.dest(), &item.CourseName, &item.CreatorName)
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		ticket, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		item.Ticket = ticket
		result = append(result, item)
	}
	return result, apperrors.NewPersistenceError(rows.Err())
}
