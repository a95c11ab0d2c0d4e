package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const attendanceColumns = `
	id, user_id, date::text, check_in, check_out, breaks,
	total_worked_seconds, low_time_flag, extra_time_flag,
	location, notes, version, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.RecordStore {
	return &attendanceRepository{db: db}
}

// Get implements attendance.RecordStore.
func (a *attendanceRepository) Get(ctx context.Context, userID, date string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT` + attendanceColumns + `
		FROM attendance_records
		WHERE user_id = $1 AND date = $2::text::date`

	rec, err := scanRecord(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return rec, nil
}

// GetByID implements attendance.RecordStore.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}

	q := GetQuerier(ctx, a.db)

	query := `SELECT` + attendanceColumns + `
		FROM attendance_records
		WHERE id = $1`

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record by id: %w", err)
	}
	return rec, nil
}

// Create implements attendance.RecordStore.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	breaks, err := marshalLedger(rec.Breaks)
	if err != nil {
		return attendance.Record{}, err
	}

	query := `
		INSERT INTO attendance_records (
			id, user_id, date, check_in, check_out, breaks,
			total_worked_seconds, low_time_flag, extra_time_flag,
			location, notes, version
		) VALUES (
			$1, $2, $3::text::date, $4, $5, $6, $7, $8, $9, $10, $11, 1
		) RETURNING` + attendanceColumns

	created, err := scanRecord(q.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Date,
		rec.CheckIn,
		rec.CheckOut,
		breaks,
		rec.TotalWorkedSeconds,
		rec.LowTimeFlag,
		rec.ExtraTimeFlag,
		rec.Location,
		rec.Notes,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return attendance.Record{}, attendance.ErrRecordExists
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return created, nil
}

// Update implements attendance.RecordStore. The version predicate makes the
// write conditional; zero affected rows means either a stale version or a
// missing record.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.Record, expectedVersion int64) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	breaks, err := marshalLedger(rec.Breaks)
	if err != nil {
		return attendance.Record{}, err
	}

	query := `
		UPDATE attendance_records SET
			check_in = $2,
			check_out = $3,
			breaks = $4,
			total_worked_seconds = $5,
			low_time_flag = $6,
			extra_time_flag = $7,
			location = $8,
			notes = $9,
			version = version + 1,
			updated_at = now()
		WHERE id = $1 AND version = $10
		RETURNING` + attendanceColumns

	updated, err := scanRecord(q.QueryRow(ctx, query,
		rec.ID,
		rec.CheckIn,
		rec.CheckOut,
		breaks,
		rec.TotalWorkedSeconds,
		rec.LowTimeFlag,
		rec.ExtraTimeFlag,
		rec.Location,
		rec.Notes,
		expectedVersion,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM attendance_records WHERE id = $1)`, rec.ID).Scan(&exists); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to check attendance record: %w", err)
	}
	if !exists {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return attendance.Record{}, attendance.ErrVersionConflict
}

// List implements attendance.RecordStore.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, filter.UserID)
		argIdx++
	}
	if filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("date >= $%d::text::date", argIdx))
		args = append(args, filter.StartDate)
		argIdx++
	}
	if filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("date <= $%d::text::date", argIdx))
		args = append(args, filter.EndDate)
		argIdx++
	}

	query := `SELECT` + attendanceColumns + ` FROM attendance_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, check_in ASC NULLS LAST"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	var breaks []byte
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Date, &rec.CheckIn, &rec.CheckOut, &breaks,
		&rec.TotalWorkedSeconds, &rec.LowTimeFlag, &rec.ExtraTimeFlag,
		&rec.Location, &rec.Notes, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	rec.Breaks = attendance.Ledger{}
	if len(breaks) > 0 {
		if err := json.Unmarshal(breaks, &rec.Breaks); err != nil {
			return attendance.Record{}, fmt.Errorf("failed to decode breaks: %w", err)
		}
	}
	return rec, nil
}

func marshalLedger(l attendance.Ledger) ([]byte, error) {
	if l == nil {
		l = attendance.Ledger{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode breaks: %w", err)
	}
	return b, nil
}
