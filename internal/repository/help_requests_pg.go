package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frontdesk/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var helpRequestColumns = []string{
	"id", "customer_phone", "question", "call_id", "agent_confidence",
	"status", "supervisor_response", "timeout_at", "created_at", "resolved_at",
}

func scanHelpRequest(row pgx.Row) (*models.HelpRequest, error) {
	var req models.HelpRequest
	err := row.Scan(
		&req.ID, &req.CustomerPhone, &req.Question, &req.CallID, &req.AgentConfidence,
		&req.Status, &req.SupervisorResponse, &req.TimeoutAt, &req.CreatedAt, &req.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (s *PostgresStore) CreateHelpRequest(ctx context.Context, req *models.HelpRequest) error {
	query := squirrel.Insert("help_requests").
		Columns(helpRequestColumns...).
		Values(req.ID, req.CustomerPhone, req.Question, req.CallID, req.AgentConfidence,
			req.Status, req.SupervisorResponse, req.TimeoutAt, req.CreatedAt, req.ResolvedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, sql, args...)
	return err
}

func (s *PostgresStore) GetHelpRequest(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error) {
	query := squirrel.Select(helpRequestColumns...).
		From("help_requests").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanHelpRequest(s.db.QueryRow(ctx, sql, args...))
}

func (s *PostgresStore) ListHelpRequests(ctx context.Context, filter HelpRequestFilter) ([]*models.HelpRequest, error) {
	query := squirrel.Select(helpRequestColumns...).
		From("help_requests").
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		PlaceholderFormat(squirrel.Dollar)

	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filter.Status})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*models.HelpRequest
	for rows.Next() {
		req, err := scanHelpRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *PostgresStore) HelpRequestStats(ctx context.Context) (*models.HelpRequestStats, error) {
	const sql = `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_count,
			COUNT(*) FILTER (WHERE status = 'resolved') AS resolved_count,
			COUNT(*) FILTER (WHERE status = 'unresolved') AS unresolved_count,
			COUNT(*) AS total_count,
			AVG(EXTRACT(EPOCH FROM (resolved_at - created_at))/60)
				FILTER (WHERE status = 'resolved') AS avg_resolution_time_minutes
		FROM help_requests`

	var stats models.HelpRequestStats
	err := s.db.QueryRow(ctx, sql).Scan(
		&stats.PendingCount, &stats.ResolvedCount, &stats.UnresolvedCount,
		&stats.TotalCount, &stats.AvgResolutionMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load help request stats: %w", err)
	}
	return &stats, nil
}

func (s *PostgresStore) MarkExpiredUnresolved(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := squirrel.Update("help_requests").
		Set("status", models.RequestStatusUnresolved).
		Where(squirrel.Eq{"status": models.RequestStatusPending}).
		Where(squirrel.Lt{"timeout_at": now}).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (t *postgresTx) GetHelpRequestForUpdate(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error) {
	query := squirrel.Select(helpRequestColumns...).
		From("help_requests").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanHelpRequest(t.tx.QueryRow(ctx, sql, args...))
}

func (t *postgresTx) MarkResolved(ctx context.Context, id uuid.UUID, answer string, at time.Time) (*models.HelpRequest, error) {
	query := squirrel.Update("help_requests").
		Set("status", models.RequestStatusResolved).
		Set("supervisor_response", answer).
		Set("resolved_at", at).
		Where(squirrel.Eq{"id": id, "status": models.RequestStatusPending}).
		Suffix("RETURNING " + joinColumns(helpRequestColumns)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanHelpRequest(t.tx.QueryRow(ctx, sql, args...))
}

func (t *postgresTx) MarkUnresolved(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Update("help_requests").
		Set("status", models.RequestStatusUnresolved).
		Where(squirrel.Eq{"id": id, "status": models.RequestStatusPending}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = t.tx.Exec(ctx, sql, args...)
	return err
}
