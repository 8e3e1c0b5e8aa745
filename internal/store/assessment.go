package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// assessmentRepo implements AssessmentRepo on the assessments table.
type assessmentRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *assessmentRepo) Record(ctx context.Context, data AssessmentData) (string, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("next sequence: %w", err)
	}

	id := uuid.New().String()
	_, err = r.db.ExecContext(ctx, `INSERT INTO assessments (
		id, sequence, timestamp, kind, request, response, summary, success, error_message, latency_ms
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		seqNum,
		time.Now().UnixMilli(),
		data.Kind,
		data.Request,
		data.Response,
		data.Summary,
		data.Success,
		data.ErrorMessage,
		data.LatencyMs,
	)
	if err != nil {
		return "", fmt.Errorf("save assessment: %w", err)
	}
	return id, nil
}

const assessmentColumns = `id, sequence, timestamp, kind, request, response, summary,
	success, error_message, latency_ms`

func (r *assessmentRepo) Recent(ctx context.Context, opts QueryOpts) ([]AssessmentRecord, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments`
	var args []any
	if opts.Kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, opts.Kind)
	}
	query += ` ORDER BY sequence DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var records []AssessmentRecord
	for rows.Next() {
		rec, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (r *assessmentRepo) Get(ctx context.Context, id string) (*AssessmentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE id = ?`, id)
	rec, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func scanAssessment(s rowScanner) (*AssessmentRecord, error) {
	var rec AssessmentRecord
	var ts int64
	err := s.Scan(
		&rec.ID,
		&rec.Sequence,
		&ts,
		&rec.Kind,
		&rec.Request,
		&rec.Response,
		&rec.Summary,
		&rec.Success,
		&rec.ErrorMessage,
		&rec.LatencyMs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan assessment: %w", err)
	}
	rec.Timestamp = time.UnixMilli(ts)
	return &rec, nil
}
