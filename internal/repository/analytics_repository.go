package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stayops/hotel-request-service/internal/domain"
)

// CategoryStat aggregates one service category within a window.
type CategoryStat struct {
	Category             string
	Count                int
	AvgCompletionSeconds *float64
}

// StaffPerformanceRow aggregates historical performance for one staff member.
// Averages are nil when no underlying rows exist; an unrated request never
// contributes a zero to AvgRating.
type StaffPerformanceRow struct {
	StaffID              string
	CompletedCount       int
	AvgCompletionSeconds *float64
	AvgRating            *float64
}

// AnalyticsRepository runs the windowed aggregation queries in the store.
// All windows are half-open [from, to).
type AnalyticsRepository interface {
	StatusCounts(ctx context.Context, hotelID string, from, to time.Time) (map[domain.RequestStatus]int, error)
	PriorityCounts(ctx context.Context, hotelID string, from, to time.Time) (map[domain.RequestPriority]int, error)
	CategoryStats(ctx context.Context, hotelID string, from, to time.Time) ([]CategoryStat, error)
	AvgResponseSeconds(ctx context.Context, hotelID string, from, to time.Time) (*float64, error)
	AvgCompletionSeconds(ctx context.Context, hotelID string, from, to time.Time) (*float64, error)
	StaffPerformance(ctx context.Context, hotelID string, from, to time.Time) ([]StaffPerformanceRow, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) StatusCounts(ctx context.Context, hotelID string, from, to time.Time) (map[domain.RequestStatus]int, error) {
	const query = `
        SELECT status, COUNT(*) FROM service_requests
        WHERE hotel_id=$1 AND requested_at >= $2 AND requested_at < $3
        GROUP BY status`
	rows, err := r.pool.Query(ctx, query, hotelID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RequestStatus]int)
	for rows.Next() {
		var status domain.RequestStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *analyticsRepository) PriorityCounts(ctx context.Context, hotelID string, from, to time.Time) (map[domain.RequestPriority]int, error) {
	const query = `
        SELECT priority, COUNT(*) FROM service_requests
        WHERE hotel_id=$1 AND requested_at >= $2 AND requested_at < $3
        GROUP BY priority`
	rows, err := r.pool.Query(ctx, query, hotelID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RequestPriority]int)
	for rows.Next() {
		var priority domain.RequestPriority
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		counts[priority] = count
	}
	return counts, rows.Err()
}

func (r *analyticsRepository) CategoryStats(ctx context.Context, hotelID string, from, to time.Time) ([]CategoryStat, error) {
	const query = `
        SELECT service_category, COUNT(*),
               AVG(EXTRACT(EPOCH FROM completed_at - started_at))
        FROM service_requests
        WHERE hotel_id=$1 AND requested_at >= $2 AND requested_at < $3
        GROUP BY service_category
        ORDER BY service_category`
	rows, err := r.pool.Query(ctx, query, hotelID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryStat
	for rows.Next() {
		var stat CategoryStat
		if err := rows.Scan(&stat.Category, &stat.Count, &stat.AvgCompletionSeconds); err != nil {
			return nil, err
		}
		result = append(result, stat)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) AvgResponseSeconds(ctx context.Context, hotelID string, from, to time.Time) (*float64, error) {
	const query = `
        SELECT AVG(EXTRACT(EPOCH FROM started_at - requested_at))
        FROM service_requests
        WHERE hotel_id=$1 AND started_at >= $2 AND started_at < $3`
	var avg *float64
	if err := r.pool.QueryRow(ctx, query, hotelID, from, to).Scan(&avg); err != nil {
		return nil, err
	}
	return avg, nil
}

func (r *analyticsRepository) AvgCompletionSeconds(ctx context.Context, hotelID string, from, to time.Time) (*float64, error) {
	const query = `
        SELECT AVG(EXTRACT(EPOCH FROM completed_at - started_at))
        FROM service_requests
        WHERE hotel_id=$1 AND completed_at >= $2 AND completed_at < $3`
	var avg *float64
	if err := r.pool.QueryRow(ctx, query, hotelID, from, to).Scan(&avg); err != nil {
		return nil, err
	}
	return avg, nil
}

func (r *analyticsRepository) StaffPerformance(ctx context.Context, hotelID string, from, to time.Time) ([]StaffPerformanceRow, error) {
	const query = `
        SELECT assigned_staff_id,
               COUNT(*) FILTER (WHERE status='COMPLETED'),
               AVG(EXTRACT(EPOCH FROM completed_at - started_at)) FILTER (WHERE status='COMPLETED'),
               AVG(guest_rating) FILTER (WHERE guest_rating IS NOT NULL)
        FROM service_requests
        WHERE hotel_id=$1 AND requested_at >= $2 AND requested_at < $3
              AND assigned_staff_id IS NOT NULL
        GROUP BY assigned_staff_id
        ORDER BY assigned_staff_id`
	rows, err := r.pool.Query(ctx, query, hotelID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StaffPerformanceRow
	for rows.Next() {
		var row StaffPerformanceRow
		if err := rows.Scan(&row.StaffID, &row.CompletedCount, &row.AvgCompletionSeconds, &row.AvgRating); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
