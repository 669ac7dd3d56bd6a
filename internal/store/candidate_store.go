package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/agendify/internal/model"
)

// candidateRow mirrors the candidates table for sqlx struct scanning.
type candidateRow struct {
	SourceMessageID string         `db:"source_message_id"`
	EventName       string         `db:"event_name"`
	EventDate       sql.NullString `db:"event_date"`
	EventTime       sql.NullString `db:"event_time"`
	Timezone        sql.NullString `db:"timezone"`
	Location        sql.NullString `db:"location"`
	Description     string         `db:"description"`
	Confidence      string         `db:"confidence"`
	Source          string         `db:"source"`
	SourceSubject   string         `db:"source_subject"`
	SourceFrom      string         `db:"source_from"`
	SourceDate      time.Time      `db:"source_date"`
	State           string         `db:"state"`
	CalendarEventID string         `db:"calendar_event_id"`
	CreatedAt       time.Time      `db:"created_at"`
	ReviewedAt      sql.NullTime   `db:"reviewed_at"`
}

func (r candidateRow) toModel() model.Candidate {
	c := model.Candidate{
		ExtractedEvent: model.ExtractedEvent{
			EventName:       r.EventName,
			Date:            nullPtr(r.EventDate),
			Time:            nullPtr(r.EventTime),
			Timezone:        nullPtr(r.Timezone),
			Location:        nullPtr(r.Location),
			Description:     r.Description,
			Confidence:      model.Confidence(r.Confidence),
			Source:          model.ExtractionSource(r.Source),
			SourceMessageID: r.SourceMessageID,
			SourceSubject:   r.SourceSubject,
			SourceFrom:      r.SourceFrom,
			SourceDate:      r.SourceDate,
		},
		State:           model.ReviewState(r.State),
		CalendarEventID: r.CalendarEventID,
		CreatedAt:       r.CreatedAt,
	}
	if r.ReviewedAt.Valid {
		at := r.ReviewedAt.Time
		c.ReviewedAt = &at
	}
	return c
}

const candidateColumns = `
	source_message_id, event_name, event_date, event_time, timezone, location,
	description, confidence, source, source_subject, source_from, source_date,
	state, calendar_event_id, created_at, reviewed_at`

// InsertCandidate stores c if its source message id is new.
func (s *SQLiteStore) InsertCandidate(ctx context.Context, c model.Candidate) (bool, error) {
	if c.State == "" {
		c.State = model.ReviewPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO candidates (`+candidateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_message_id) DO NOTHING`,
		c.SourceMessageID, c.EventName,
		ptrNull(c.Date), ptrNull(c.Time), ptrNull(c.Timezone), ptrNull(c.Location),
		c.Description, string(c.Confidence), string(c.Source),
		c.SourceSubject, c.SourceFrom, c.SourceDate.UTC(),
		string(c.State), c.CalendarEventID, c.CreatedAt.UTC(), timeNull(c.ReviewedAt),
	)
	if err != nil {
		return false, fmt.Errorf("inserting candidate %s: %w", c.SourceMessageID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n > 0, nil
}

// GetCandidate retrieves a single candidate by its source message id.
func (s *SQLiteStore) GetCandidate(ctx context.Context, messageID string) (*model.Candidate, error) {
	var row candidateRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+candidateColumns+" FROM candidates WHERE source_message_id = ?", messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, messageID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting candidate %s: %w", messageID, err)
	}

	c := row.toModel()
	return &c, nil
}

// ListCandidates returns candidates oldest message first.
func (s *SQLiteStore) ListCandidates(ctx context.Context, filter CandidateFilter) ([]model.Candidate, error) {
	query := "SELECT " + candidateColumns + " FROM candidates"
	var args []interface{}

	if filter.State != nil {
		query += " WHERE state = ?"
		args = append(args, string(*filter.State))
	}
	query += " ORDER BY source_date ASC, source_message_id ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var rows []candidateRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}

	candidates := make([]model.Candidate, 0, len(rows))
	for _, r := range rows {
		candidates = append(candidates, r.toModel())
	}
	return candidates, nil
}

// TransitionCandidate moves a pending candidate to state.
func (s *SQLiteStore) TransitionCandidate(
	ctx context.Context,
	messageID string,
	state model.ReviewState,
	calendarEventID string,
	at time.Time,
) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE candidates
		SET state = ?, calendar_event_id = ?, reviewed_at = ?
		WHERE source_message_id = ? AND state = 'pending'`,
		string(state), calendarEventID, at.UTC(), messageID,
	)
	if err != nil {
		return fmt.Errorf("updating candidate %s: %w", messageID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = s.db.GetContext(ctx, &exists,
		"SELECT COUNT(*) FROM candidates WHERE source_message_id = ?", messageID)
	if err != nil {
		return fmt.Errorf("checking candidate %s: %w", messageID, err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, messageID)
	}
	return fmt.Errorf("%w: %s", ErrNotPending, messageID)
}

func nullPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return model.StringPtr(ns.String)
}

func ptrNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func timeNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
