package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepository{db: db}
}

// Create implements audit.Repository.
func (r *auditRepository) Create(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_logs (id, actor_id, actor_name, action, target_type, target_id, details, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err := q.QueryRow(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.ActorName,
		string(entry.Action),
		string(entry.TargetType),
		entry.TargetID,
		entry.Details,
		jsonbOrNil(entry.Before),
		jsonbOrNil(entry.After),
		entry.CreatedAt,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("failed to create audit entry: %w", err)
	}
	return entry, nil
}

// List implements audit.Repository.
func (r *auditRepository) List(ctx context.Context, filter audit.ListFilter) ([]audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, actor_id, actor_name, action, target_type, target_id, details, before, after, created_at
		FROM audit_logs`
	var args []interface{}
	argIdx := 1

	if filter.TargetID != "" {
		query += fmt.Sprintf(" WHERE target_id = $%d", argIdx)
		args = append(args, filter.TargetID)
		argIdx++
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0)
	for rows.Next() {
		var e audit.Entry
		var action, targetType string
		var before, after []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &action, &targetType, &e.TargetID, &e.Details, &before, &after, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Action = audit.Action(action)
		e.TargetType = audit.TargetType(targetType)
		e.Before = before
		e.After = after
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}

func jsonbOrNil(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
