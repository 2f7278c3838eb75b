package imports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrJobNotFound is returned when a job id does not exist or belongs to
// another user.
var ErrJobNotFound = errors.New("import job not found")

// Job is the persisted record of one import session, written when a session
// opens and finalized when its submission settles or it is dismissed.
type Job struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Mode        Mode       `json:"mode"`
	Filename    string     `json:"filename"`
	RowCount    int        `json:"rowCount"`
	State       State      `json:"state"`
	Outcome     *Outcome   `json:"outcome,omitempty"`
	RequestID   string     `json:"requestId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
}

// Store persists import jobs.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Create inserts a job in its initial state and returns the stored record.
func (s *Store) Create(ctx context.Context, userID string, mode Mode, filename string, rowCount int, requestID string) (*Job, error) {
	const q = `
		INSERT INTO import_jobs (user_id, mode, filename, row_count, state, request_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	job := &Job{
		UserID:    userID,
		Mode:      mode,
		Filename:  filename,
		RowCount:  rowCount,
		State:     StatePreviewing,
		RequestID: requestID,
	}
	err := s.DB.QueryRow(ctx, q, userID, mode, filename, rowCount, job.State, requestID).
		Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert import job: %w", err)
	}
	return job, nil
}

// UpdateState moves a job to a new lifecycle state without touching its
// outcome.
func (s *Store) UpdateState(ctx context.Context, jobID, userID string, state State) error {
	const q = `
		UPDATE import_jobs SET state = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3`

	tag, err := s.DB.Exec(ctx, q, state, jobID, userID)
	if err != nil {
		return fmt.Errorf("update import job state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Finalize records the settled outcome and terminal state of a job.
func (s *Store) Finalize(ctx context.Context, jobID, userID string, state State, outcome *Outcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	const q = `
		UPDATE import_jobs
		SET state = $1, outcome_json = $2, updated_at = now(), finalized_at = now()
		WHERE id = $3 AND user_id = $4`

	tag, err := s.DB.Exec(ctx, q, state, payload, jobID, userID)
	if err != nil {
		return fmt.Errorf("finalize import job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Get returns one of the user's jobs by id.
func (s *Store) Get(ctx context.Context, jobID, userID string) (*Job, error) {
	const q = `
		SELECT id, user_id, mode, filename, row_count, state, outcome_json,
		       request_id, created_at, updated_at, finalized_at
		FROM import_jobs
		WHERE id = $1 AND user_id = $2`

	job, err := scanJob(s.DB.QueryRow(ctx, q, jobID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get import job: %w", err)
	}
	return job, nil
}

// List returns the user's jobs, newest first.
func (s *Store) List(ctx context.Context, userID string, limit, offset int) ([]*Job, error) {
	const q = `
		SELECT id, user_id, mode, filename, row_count, state, outcome_json,
		       request_id, created_at, updated_at, finalized_at
		FROM import_jobs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.DB.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan import job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*Job, error) {
	var (
		job     Job
		payload []byte
	)
	err := row.Scan(&job.ID, &job.UserID, &job.Mode, &job.Filename, &job.RowCount,
		&job.State, &payload, &job.RequestID, &job.CreatedAt, &job.UpdatedAt, &job.FinalizedAt)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		var outcome Outcome
		if err := json.Unmarshal(payload, &outcome); err != nil {
			return nil, fmt.Errorf("unmarshal outcome: %w", err)
		}
		job.Outcome = &outcome
	}
	return &job, nil
}
