package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stayops/hotel-request-service/internal/domain"
)

// RequestFilter captures listing parameters.
type RequestFilter struct {
	HotelID         *string
	GuestID         *string
	AssignedStaffID *string
	Statuses        []domain.RequestStatus
	Priorities      []domain.RequestPriority
	Categories      []string
	SearchTerm      *string
	RequestedFrom   *time.Time
	RequestedTo     *time.Time
	Limit           int
	Offset          int
}

// RequestRepository encapsulates service request persistence. The three
// conditional mutations (ClaimPending, TransitionStatus, SetRating) are
// atomic check-then-commit operations: they report false instead of
// mutating when the precondition no longer holds.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	GetByExternalKey(ctx context.Context, key string) (*domain.ServiceRequest, error)
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error)
	Delete(ctx context.Context, id string) error

	CountActiveByStaff(ctx context.Context, staffID string) (int, error)
	ActiveCountsByHotel(ctx context.Context, hotelID string) (map[string]int, error)

	// ClaimPending moves a PENDING request to IN_PROGRESS for staffID,
	// provided the staff member's active load is below capacity at the
	// moment of commit.
	ClaimPending(ctx context.Context, id, staffID string, capacity int, startedAt time.Time) (bool, error)
	// ReassignActive moves an IN_PROGRESS request to another staff member
	// under the same capacity guard. StartedAt is left untouched.
	ReassignActive(ctx context.Context, id, staffID string, capacity int) (bool, error)
	// TransitionStatus applies a compare-and-swap on status. Completing
	// stamps completedAt; cancelling releases the assignee.
	TransitionStatus(ctx context.Context, id string, from, to domain.RequestStatus, stamp *time.Time) (bool, error)
	// SetRating records the guest rating once, only on a COMPLETED request.
	SetRating(ctx context.Context, id string, rating int) (bool, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestColumns = `id, external_key, hotel_id, room_id, guest_id, service_category,
               title, description, status, priority, assigned_staff_id, guest_rating,
               requested_at, started_at, completed_at, updated_at`

func (r *requestRepository) Create(ctx context.Context, request *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (external_key, hotel_id, room_id, guest_id, service_category,
            title, description, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, requested_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.ExternalKey,
		request.HotelID,
		request.RoomID,
		request.GuestID,
		request.ServiceCategory,
		request.Title,
		request.Description,
		request.Status,
		request.Priority,
	).Scan(&request.ID, &request.RequestedAt, &request.UpdatedAt)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *requestRepository) GetByExternalKey(ctx context.Context, key string) (*domain.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE external_key=$1`
	return r.fetchSingle(ctx, query, key)
}

func (r *requestRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ServiceRequest, error) {
	var request domain.ServiceRequest
	if err := scanRequest(r.pool.QueryRow(ctx, query, arg), &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM service_requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) CountActiveByStaff(ctx context.Context, staffID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM service_requests
        WHERE assigned_staff_id=$1 AND status='IN_PROGRESS'`
	var count int
	if err := r.pool.QueryRow(ctx, query, staffID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *requestRepository) ActiveCountsByHotel(ctx context.Context, hotelID string) (map[string]int, error) {
	const query = `
        SELECT assigned_staff_id, COUNT(*) FROM service_requests
        WHERE hotel_id=$1 AND status='IN_PROGRESS' AND assigned_staff_id IS NOT NULL
        GROUP BY assigned_staff_id`
	rows, err := r.pool.Query(ctx, query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var staffID string
		var count int
		if err := rows.Scan(&staffID, &count); err != nil {
			return nil, err
		}
		counts[staffID] = count
	}
	return counts, rows.Err()
}

// ClaimPending serializes claims per staff member with a transaction-scoped
// advisory lock, then re-counts the active load inside the same transaction.
// Two racing claims for the last free slot therefore commit in order and the
// second one observes a full staff member.
func (r *requestRepository) ClaimPending(ctx context.Context, id, staffID string, capacity int, startedAt time.Time) (bool, error) {
	return r.claimWithCapacity(ctx, staffID, capacity, `
        UPDATE service_requests
        SET status='IN_PROGRESS', assigned_staff_id=$2, started_at=$3, updated_at=NOW()
        WHERE id=$1 AND status='PENDING'`, id, staffID, startedAt)
}

func (r *requestRepository) ReassignActive(ctx context.Context, id, staffID string, capacity int) (bool, error) {
	return r.claimWithCapacity(ctx, staffID, capacity, `
        UPDATE service_requests
        SET assigned_staff_id=$2, updated_at=NOW()
        WHERE id=$1 AND status='IN_PROGRESS' AND assigned_staff_id IS DISTINCT FROM $2`, id, staffID)
}

func (r *requestRepository) claimWithCapacity(ctx context.Context, staffID string, capacity int, update string, args ...any) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, staffID); err != nil {
		return false, err
	}

	var load int
	const countQuery = `
        SELECT COUNT(*) FROM service_requests
        WHERE assigned_staff_id=$1 AND status='IN_PROGRESS'`
	if err := tx.QueryRow(ctx, countQuery, staffID).Scan(&load); err != nil {
		return false, err
	}
	if load >= capacity {
		return false, nil
	}

	cmd, err := tx.Exec(ctx, update, args...)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}
	return true, tx.Commit(ctx)
}

func (r *requestRepository) TransitionStatus(ctx context.Context, id string, from, to domain.RequestStatus, stamp *time.Time) (bool, error) {
	var query string
	args := []any{id, from}
	switch to {
	case domain.RequestStatusCompleted:
		query = `
            UPDATE service_requests
            SET status='COMPLETED', completed_at=$3, updated_at=NOW()
            WHERE id=$1 AND status=$2`
		args = append(args, stamp)
	case domain.RequestStatusCancelled:
		query = `
            UPDATE service_requests
            SET status='CANCELLED', assigned_staff_id=NULL, updated_at=NOW()
            WHERE id=$1 AND status=$2`
	default:
		return false, fmt.Errorf("unsupported transition target %s", to)
	}

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *requestRepository) SetRating(ctx context.Context, id string, rating int) (bool, error) {
	const query = `
        UPDATE service_requests
        SET guest_rating=$2, updated_at=NOW()
        WHERE id=$1 AND status='COMPLETED' AND guest_rating IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id, rating)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *requestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error) {
	base := `SELECT ` + requestColumns + ` FROM service_requests`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.HotelID != nil {
		args = append(args, *filter.HotelID)
		clauses = append(clauses, fmt.Sprintf("hotel_id=$%d", len(args)))
	}
	if filter.GuestID != nil {
		args = append(args, *filter.GuestID)
		clauses = append(clauses, fmt.Sprintf("guest_id=$%d", len(args)))
	}
	if filter.AssignedStaffID != nil {
		args = append(args, *filter.AssignedStaffID)
		clauses = append(clauses, fmt.Sprintf("assigned_staff_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, cat := range filter.Categories {
			args = append(args, cat)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("service_category IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.RequestedFrom != nil {
		args = append(args, *filter.RequestedFrom)
		clauses = append(clauses, fmt.Sprintf("requested_at >= $%d", len(args)))
	}
	if filter.RequestedTo != nil {
		args = append(args, *filter.RequestedTo)
		clauses = append(clauses, fmt.Sprintf("requested_at < $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY requested_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner, request *domain.ServiceRequest) error {
	return row.Scan(
		&request.ID,
		&request.ExternalKey,
		&request.HotelID,
		&request.RoomID,
		&request.GuestID,
		&request.ServiceCategory,
		&request.Title,
		&request.Description,
		&request.Status,
		&request.Priority,
		&request.AssignedStaffID,
		&request.GuestRating,
		&request.RequestedAt,
		&request.StartedAt,
		&request.CompletedAt,
		&request.UpdatedAt,
	)
}

func scanRequests(rows pgx.Rows) ([]domain.ServiceRequest, error) {
	var result []domain.ServiceRequest
	for rows.Next() {
		var request domain.ServiceRequest
		if err := scanRequest(rows, &request); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}
