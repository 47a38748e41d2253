package repository

import (
	"context"
	"errors"
	"fmt"

	"frontdesk/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var knowledgeColumns = []string{
	"id", "question_pattern", "normalized_question", "answer", "tags",
	"is_active", "times_used", "learned_from_request_id", "created_at", "updated_at",
}

func scanKnowledgeEntry(row pgx.Row) (*models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	err := row.Scan(
		&entry.ID, &entry.QuestionPattern, &entry.NormalizedQuestion, &entry.Answer, &entry.Tags,
		&entry.IsActive, &entry.TimesUsed, &entry.LearnedFromRequestID, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (s *PostgresStore) CreateKnowledgeEntry(ctx context.Context, entry *models.KnowledgeEntry) error {
	query := squirrel.Insert("knowledge_base").
		Columns(knowledgeColumns...).
		Values(entry.ID, entry.QuestionPattern, entry.NormalizedQuestion, entry.Answer, entry.Tags,
			entry.IsActive, entry.TimesUsed, entry.LearnedFromRequestID, entry.CreatedAt, entry.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePattern
		}
		return err
	}
	return nil
}

func (s *PostgresStore) GetKnowledgeEntry(ctx context.Context, id uuid.UUID) (*models.KnowledgeEntry, error) {
	query := squirrel.Select(knowledgeColumns...).
		From("knowledge_base").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanKnowledgeEntry(s.db.QueryRow(ctx, sql, args...))
}

func (s *PostgresStore) ListKnowledgeEntries(ctx context.Context, filter KnowledgeFilter) ([]*models.KnowledgeEntry, error) {
	query := squirrel.Select(knowledgeColumns...).
		From("knowledge_base").
		OrderBy("times_used DESC", "created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		PlaceholderFormat(squirrel.Dollar)

	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	return s.queryKnowledgeEntries(ctx, query)
}

func (s *PostgresStore) ListActiveKnowledgeEntries(ctx context.Context) ([]*models.KnowledgeEntry, error) {
	query := squirrel.Select(knowledgeColumns...).
		From("knowledge_base").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("created_at ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)

	return s.queryKnowledgeEntries(ctx, query)
}

func (s *PostgresStore) queryKnowledgeEntries(ctx context.Context, query squirrel.SelectBuilder) ([]*models.KnowledgeEntry, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.KnowledgeEntry
	for rows.Next() {
		entry, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) UpdateKnowledgeEntry(ctx context.Context, entry *models.KnowledgeEntry) error {
	query := squirrel.Update("knowledge_base").
		Set("question_pattern", entry.QuestionPattern).
		Set("normalized_question", entry.NormalizedQuestion).
		Set("answer", entry.Answer).
		Set("tags", entry.Tags).
		Set("is_active", entry.IsActive).
		Set("updated_at", entry.UpdatedAt).
		Where(squirrel.Eq{"id": entry.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePattern
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) IncrementTimesUsed(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Update("knowledge_base").
		Set("times_used", squirrel.Expr("times_used + 1")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, sql, args...)
	return err
}

func (s *PostgresStore) KnowledgeStats(ctx context.Context) (*models.KnowledgeStats, error) {
	const sql = `
		SELECT
			COUNT(*) FILTER (WHERE is_active = true) AS active_count,
			COUNT(*) FILTER (WHERE is_active = false) AS inactive_count,
			COUNT(*) AS total_count,
			COUNT(*) FILTER (WHERE learned_from_request_id IS NULL AND is_active = true) AS seeded_count,
			COUNT(*) FILTER (WHERE learned_from_request_id IS NOT NULL AND is_active = true) AS learned_count,
			COALESCE(SUM(times_used), 0) AS total_uses,
			COALESCE(AVG(times_used), 0) AS avg_uses_per_entry
		FROM knowledge_base`

	var stats models.KnowledgeStats
	err := s.db.QueryRow(ctx, sql).Scan(
		&stats.ActiveCount, &stats.InactiveCount, &stats.TotalCount,
		&stats.SeededCount, &stats.LearnedCount, &stats.TotalUses, &stats.AvgUsesPerEntry,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge stats: %w", err)
	}

	mostUsed, err := s.mostUsedEntry(ctx)
	if err != nil {
		return nil, err
	}
	stats.MostUsed = mostUsed
	return &stats, nil
}

func (s *PostgresStore) mostUsedEntry(ctx context.Context) (*models.MostUsedEntry, error) {
	query := squirrel.Select("question_pattern", "answer", "times_used").
		From("knowledge_base").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("times_used DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var most models.MostUsedEntry
	err = s.db.QueryRow(ctx, sql, args...).Scan(&most.QuestionPattern, &most.Answer, &most.TimesUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &most, nil
}

func (t *postgresTx) UpsertKnowledgeEntry(ctx context.Context, entry *models.KnowledgeEntry) (*models.KnowledgeEntry, error) {
	query := squirrel.Insert("knowledge_base").
		Columns(knowledgeColumns...).
		Values(entry.ID, entry.QuestionPattern, entry.NormalizedQuestion, entry.Answer, entry.Tags,
			entry.IsActive, entry.TimesUsed, entry.LearnedFromRequestID, entry.CreatedAt, entry.UpdatedAt).
		Suffix(`ON CONFLICT (lower(question_pattern)) DO UPDATE SET
				answer = EXCLUDED.answer,
				learned_from_request_id = EXCLUDED.learned_from_request_id,
				updated_at = EXCLUDED.updated_at
			RETURNING ` + joinColumns(knowledgeColumns)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanKnowledgeEntry(t.tx.QueryRow(ctx, sql, args...))
}
