package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Repository errors shared by every store implementation.
var (
	ErrNotFound        = errors.New("ticket not found")
	ErrDuplicate       = errors.New("ticket identifier already exists")
	ErrVersionConflict = errors.New("ticket was modified concurrently")
)

// TicketFilter captures list and count parameters.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Category   *domain.TicketCategory
	SearchTerm *string
	SortField  string
	SortOrder  SortOrder
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// Create inserts a new ticket. It returns ErrDuplicate when ticketId or srNo is taken.
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update replaces a ticket whose stored version equals ticket.Version and bumps the version.
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, filter TicketFilter) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error)
	ListTicketIDs(ctx context.Context) ([]string, error)
	MaxSrNo(ctx context.Context) (int64, error)
	// TrimStatusWhitespace rewrites stored status values with surrounding whitespace removed.
	TrimStatusWhitespace(ctx context.Context) (int64, error)
}

const uniqueViolation = "23505"

const ticketColumns = `ticket_id, sr_no, category, sub_category, subject, description, status, priority,
        reason, remarks, raised_on, last_updated_on, initiator, raised_by, re_client_name, fi_code,
        assigned_to, documents, audit_trail, feedback, contact_info, tags, related_tickets, sla,
        version, created_at, updated_at`

var postgresSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"srNo":      "sr_no",
	"ticketId":  "ticket_id",
	"status":    "status",
	"category":  "category",
	"priority":  "priority",
	"subject":   "subject",
	"raisedOn":  "created_at",
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (` + ticketColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27)`

	docs, audit, feedback, contact, sla, err := encodeNested(ticket)
	if err != nil {
		return err
	}
	if ticket.Version == 0 {
		ticket.Version = 1
	}
	_, err = r.pool.Exec(ctx, query,
		ticket.TicketID,
		ticket.SrNo,
		ticket.Category,
		ticket.SubCategory,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Reason,
		ticket.Remarks,
		ticket.RaisedOn,
		ticket.LastUpdatedOn,
		ticket.Initiator,
		ticket.RaisedBy,
		ticket.REClientName,
		ticket.FICode,
		ticket.AssignedTo,
		docs,
		audit,
		feedback,
		contact,
		nonNilStrings(ticket.Tags),
		nonNilStrings(ticket.RelatedTickets),
		sla,
		ticket.Version,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET category=$1, sub_category=$2, subject=$3, description=$4, status=$5, priority=$6,
            reason=$7, remarks=$8, last_updated_on=$9, raised_by=$10, re_client_name=$11, fi_code=$12,
            assigned_to=$13, documents=$14, audit_trail=$15, feedback=$16, contact_info=$17, tags=$18,
            related_tickets=$19, sla=$20, updated_at=$21, version=version+1
        WHERE ticket_id=$22 AND version=$23`

	docs, audit, feedback, contact, sla, err := encodeNested(ticket)
	if err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Category,
		ticket.SubCategory,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Reason,
		ticket.Remarks,
		ticket.LastUpdatedOn,
		ticket.RaisedBy,
		ticket.REClientName,
		ticket.FICode,
		ticket.AssignedTo,
		docs,
		audit,
		feedback,
		contact,
		nonNilStrings(ticket.Tags),
		nonNilStrings(ticket.RelatedTickets),
		sla,
		ticket.UpdatedAt,
		ticket.TicketID,
		ticket.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE ticket_id=$1)`, ticket.TicketID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrVersionConflict
		}
		return ErrNotFound
	}
	ticket.Version++
	return nil
}

func (r *ticketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := buildTicketWhere(filter)

	column := postgresSortColumns[ResolveSortField(filter.SortField)]
	direction := "DESC"
	if filter.SortOrder == SortAsc {
		direction = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s %s, sr_no %s LIMIT %d OFFSET %d`,
		ticketColumns, where, column, direction, direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int64, error) {
	where, args := buildTicketWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE `+where, args...).Scan(&total)
	return total, err
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.TicketStatus(status)] += n
	}
	return counts, rows.Err()
}

func (r *ticketRepository) ListTicketIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT ticket_id FROM tickets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ticketRepository) MaxSrNo(ctx context.Context) (int64, error) {
	var max int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(sr_no), 0) FROM tickets`).Scan(&max)
	return max, err
}

func (r *ticketRepository) TrimStatusWhitespace(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET status = btrim(status) WHERE status <> btrim(status)`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func buildTicketWhere(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, strings.TrimSpace(*filter.SearchTerm))
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(strpos(lower(subject), lower(%[1]s)) > 0 OR strpos(lower(description), lower(%[1]s)) > 0 OR strpos(lower(ticket_id), lower(%[1]s)) > 0 OR strpos(lower(sub_category), lower(%[1]s)) > 0)",
			p))
	}
	return strings.Join(clauses, " AND "), args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket                                  domain.Ticket
		docs, audit, feedback, contact, slaJSON []byte
	)
	if err := row.Scan(
		&ticket.TicketID,
		&ticket.SrNo,
		&ticket.Category,
		&ticket.SubCategory,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Reason,
		&ticket.Remarks,
		&ticket.RaisedOn,
		&ticket.LastUpdatedOn,
		&ticket.Initiator,
		&ticket.RaisedBy,
		&ticket.REClientName,
		&ticket.FICode,
		&ticket.AssignedTo,
		&docs,
		&audit,
		&feedback,
		&contact,
		&ticket.Tags,
		&ticket.RelatedTickets,
		&slaJSON,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}

	ticket.Documents = []domain.Document{}
	ticket.AuditTrail = []domain.AuditEntry{}
	if err := decodeJSON(docs, &ticket.Documents); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	if err := decodeJSON(audit, &ticket.AuditTrail); err != nil {
		return nil, fmt.Errorf("decode audit trail: %w", err)
	}
	if err := decodeJSON(feedback, &ticket.Feedback); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	if err := decodeJSON(contact, &ticket.ContactInfo); err != nil {
		return nil, fmt.Errorf("decode contact info: %w", err)
	}
	if err := decodeJSON(slaJSON, &ticket.SLA); err != nil {
		return nil, fmt.Errorf("decode sla: %w", err)
	}
	ticket.Tags = nonNilStrings(ticket.Tags)
	ticket.RelatedTickets = nonNilStrings(ticket.RelatedTickets)
	return &ticket, nil
}

func encodeNested(ticket *domain.Ticket) (docs, audit, feedback, contact, sla []byte, err error) {
	if docs, err = json.Marshal(nonNilDocuments(ticket.Documents)); err != nil {
		return
	}
	trail := ticket.AuditTrail
	if trail == nil {
		trail = []domain.AuditEntry{}
	}
	if audit, err = json.Marshal(trail); err != nil {
		return
	}
	if ticket.Feedback != nil {
		if feedback, err = json.Marshal(ticket.Feedback); err != nil {
			return
		}
	}
	if ticket.ContactInfo != nil {
		if contact, err = json.Marshal(ticket.ContactInfo); err != nil {
			return
		}
	}
	if ticket.SLA != nil {
		if sla, err = json.Marshal(ticket.SLA); err != nil {
			return
		}
	}
	return
}

func decodeJSON(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilDocuments(docs []domain.Document) []domain.Document {
	if docs == nil {
		return []domain.Document{}
	}
	return docs
}
