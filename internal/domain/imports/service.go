package imports

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"hrimport/internal/platform/metrics"
)

// JobStore persists job records. Satisfied by *Store; tests substitute an
// in-memory double.
type JobStore interface {
	Create(ctx context.Context, userID string, mode Mode, filename string, rowCount int, requestID string) (*Job, error)
	UpdateState(ctx context.Context, jobID, userID string, state State) error
	Finalize(ctx context.Context, jobID, userID string, state State, outcome *Outcome) error
	Get(ctx context.Context, jobID, userID string) (*Job, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*Job, error)
}

// Auditor records who did what. Satisfied by the audit service.
type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, details any) error
}

// ErrSessionNotFound is returned when a job id has no live in-memory session,
// either because it never existed or because the session expired.
var ErrSessionNotFound = errors.New("import session not found")

// session pairs one coordinator with its persisted job record. Sessions live
// in memory only; a restart loses unconfirmed previews but not finalized
// job records.
type session struct {
	coordinator *Coordinator
	userID      string
	openedAt    time.Time
}

// Service owns the live import sessions and ties the pipeline to persistence,
// auditing and metrics.
type Service struct {
	api            EmployeeAPI
	store          JobStore
	audit          Auditor
	organizationID string
	sessionTTL     time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(api EmployeeAPI, store JobStore, auditSvc Auditor, organizationID string, sessionTTL time.Duration) *Service {
	return &Service{
		api:            api,
		store:          store,
		audit:          auditSvc,
		organizationID: organizationID,
		sessionTTL:     sessionTTL,
		sessions:       make(map[string]*session),
	}
}

// PreviewRowLimit caps how many rows a preview carries. The job's RowCount
// always reflects the full parsed total.
const PreviewRowLimit = 5

// Preview is what a freshly opened session shows before confirmation.
type Preview struct {
	Job      *Job         `json:"job"`
	Rows     []Row        `json:"rows"`
	Warnings []RowWarning `json:"warnings,omitempty"`
}

// Open parses an upload, persists a job record and registers a live session
// keyed by the job id. The returned preview carries the parsed rows and
// advisory warnings.
func (s *Service) Open(ctx context.Context, userID, requestID, ip string, mode Mode, filename string, contents []byte) (*Preview, error) {
	coordinator := NewCoordinator(s.api, s.organizationID)
	if err := coordinator.Load(ctx, mode, filename, contents); err != nil {
		return nil, err
	}
	rows := coordinator.Rows()
	metrics.RowsParsed.Add(float64(len(rows)))

	job, err := s.store.Create(ctx, userID, mode, filename, len(rows), requestID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[job.ID] = &session{coordinator: coordinator, userID: userID, openedAt: time.Now()}
	s.mu.Unlock()

	if err := s.audit.Record(ctx, userID, "import.open", "import_job", job.ID, requestID, ip,
		map[string]any{"mode": mode, "filename": filename, "rowCount": len(rows)}); err != nil {
		slog.Warn("audit record failed", "action", "import.open", "error", err)
	}

	previewRows := rows
	if len(previewRows) > PreviewRowLimit {
		previewRows = previewRows[:PreviewRowLimit]
	}
	return &Preview{Job: job, Rows: previewRows, Warnings: coordinator.Warnings()}, nil
}

// Confirm submits a previewed session and finalizes its job record. The
// session stays registered afterward so the caller can read the outcome and
// dismiss it explicitly.
func (s *Service) Confirm(ctx context.Context, userID, requestID, ip, jobID string) (*Outcome, error) {
	sess, err := s.session(jobID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateState(ctx, jobID, userID, StateSubmitting); err != nil {
		return nil, err
	}

	started := time.Now()
	outcome, err := sess.coordinator.Confirm(ctx)
	if err != nil {
		return nil, err
	}
	state := sess.coordinator.State()
	metrics.ObserveOutcome(string(outcome.Flow), string(state), outcome.SuccessCount, outcome.FailureCount, time.Since(started).Seconds())

	if err := s.store.Finalize(ctx, jobID, userID, state, outcome); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, userID, "import.confirm", "import_job", jobID, requestID, ip, outcome); err != nil {
		slog.Warn("audit record failed", "action", "import.confirm", "error", err)
	}
	return outcome, nil
}

// Dismiss drops a live session. A settled session keeps its finalized record;
// an unconfirmed preview is marked abandoned.
func (s *Service) Dismiss(ctx context.Context, userID, requestID, ip, jobID string) error {
	sess, err := s.session(jobID, userID)
	if err != nil {
		return err
	}

	if !sess.coordinator.State().Terminal() {
		if err := s.store.UpdateState(ctx, jobID, userID, StateIdle); err != nil {
			return err
		}
	}

	s.mu.Lock()
	delete(s.sessions, jobID)
	s.mu.Unlock()

	if err := s.audit.Record(ctx, userID, "import.dismiss", "import_job", jobID, requestID, ip, nil); err != nil {
		slog.Warn("audit record failed", "action", "import.dismiss", "error", err)
	}
	return nil
}

// Get returns a persisted job record.
func (s *Service) Get(ctx context.Context, userID, jobID string) (*Job, error) {
	return s.store.Get(ctx, jobID, userID)
}

// List returns the user's job records, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]*Job, error) {
	return s.store.List(ctx, userID, limit, offset)
}

func (s *Service) session(jobID, userID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[jobID]
	if !ok || sess.userID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// StartJanitor evicts expired sessions once a minute until ctx is canceled.
func (s *Service) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evictExpired()
			}
		}
	}()
}

func (s *Service) evictExpired() {
	cutoff := time.Now().Add(-s.sessionTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.openedAt.Before(cutoff) {
			delete(s.sessions, id)
			slog.Info("import session expired", "jobId", id)
		}
	}
}
