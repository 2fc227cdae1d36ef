package importer

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sqoolify/sqoolify/core"
)

var (
	ErrSessionNotFound = errors.New("import session not found")
	ErrSessionDone     = errors.New("import session already submitted")
	ErrSubmitInFlight  = errors.New("a submission is already in progress")
	ErrSessionMismatch = errors.New("import session does not match this import target")
)

type (
	// Outcome is the aggregate result of one batch submission. Rows are
	// applied individually by the acceptor even though they are sent as
	// one batch, so SuccessCount+FailureCount equals the number of rows
	// submitted.
	Outcome struct {
		SuccessCount int      `json:"success_count"`
		FailureCount int      `json:"failure_count"`
		Errors       []string `json:"errors,omitempty"`
	}

	// Acceptor receives a full validated row set in one call and applies
	// it row by row.
	Acceptor interface {
		SubmitBatch(ctx context.Context, rows []Row) (Outcome, error)
	}

	// AcceptorFunc adapts a function to the Acceptor interface.
	AcceptorFunc func(ctx context.Context, rows []Row) (Outcome, error)

	// Session is one upload's worth of ephemeral state: the validated
	// rows waiting for the user's confirmation and their preview. It is
	// discarded once the outcome has been consumed. A session is bound
	// to the type (and, when given, the owning entity) it was validated
	// for; it cannot be submitted anywhere else.
	Session struct {
		ID        string    `json:"id"`
		Type      string    `json:"type"`
		Ref       string    `json:"ref,omitempty"` // owning entity ID, if any
		CreatedAt time.Time `json:"created_at"`

		mu       sync.Mutex
		rows     []Row
		preview  *Preview
		inFlight bool
		done     bool
	}

	// Service runs the upload -> parse -> validate -> preview -> submit
	// pipeline and tracks open sessions.
	Service struct {
		maxCols int
		maxRows int

		mu       sync.RWMutex
		sessions map[string]*Session
	}
)

func (f AcceptorFunc) SubmitBatch(ctx context.Context, rows []Row) (Outcome, error) {
	return f(ctx, rows)
}

func NewService(conf *core.Config) *Service {
	return &Service{
		maxCols:  conf.Import.PreviewMaxCols,
		maxRows:  conf.Import.PreviewMaxRows,
		sessions: make(map[string]*Session),
	}
}

// Start parses and validates an upload against the schema. Validation
// failures of any kind reject the upload in full; a clean row set opens
// a session holding the rows and their preview, bound to typ and ref.
// ref is the owning entity's ID for scoped imports, "" otherwise.
func (svc *Service) Start(typ, ref string, schema Schema, src io.Reader, rules ...RowRule) (*Session, error) {
	headers, rows, err := Parse(src)
	if err != nil {
		return nil, asValidationError([]RowError{fileError("could not read file: %v", err)})
	}

	rows, rowErrs := Validate(schema, headers, rows, rules...)
	if len(rowErrs) > 0 {
		return nil, asValidationError(rowErrs)
	}

	preview := BuildPreview(schema, rows, svc.maxCols, svc.maxRows)
	session := &Session{
		ID:        uuid.New().String(),
		Type:      typ,
		Ref:       ref,
		CreatedAt: time.Now().UTC(),
		rows:      rows,
		preview:   &preview,
	}

	svc.mu.Lock()
	svc.sessions[session.ID] = session
	svc.mu.Unlock()
	return session, nil
}

func (svc *Service) Get(id string) (*Session, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	if s, ok := svc.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrSessionNotFound
}

// GetFor retrieves a session and checks it was opened for the given
// type and ref. A session validated for one target never submits to
// another.
func (svc *Service) GetFor(id, typ, ref string) (*Session, error) {
	s, err := svc.Get(id)
	if err != nil {
		return nil, err
	}
	if s.Type != typ || s.Ref != ref {
		return nil, ErrSessionMismatch
	}
	return s, nil
}

// Drop discards a session, e.g. when the user dismisses the dialog.
// An already-sent batch is not retracted.
func (svc *Service) Drop(id string) {
	svc.mu.Lock()
	delete(svc.sessions, id)
	svc.mu.Unlock()
}

// Submit sends a session's full row set to the acceptor, at most once.
// A transport error leaves the session intact so the user may confirm
// again; an Outcome (even a partial failure) consumes the session and
// clears the preview, forcing a fresh upload to re-derive the rows.
func (svc *Service) Submit(ctx context.Context, id string, acc Acceptor) (Outcome, error) {
	session, err := svc.Get(id)
	if err != nil {
		return Outcome{}, err
	}

	session.mu.Lock()
	if session.done {
		session.mu.Unlock()
		return Outcome{}, ErrSessionDone
	}
	if session.inFlight {
		session.mu.Unlock()
		return Outcome{}, ErrSubmitInFlight
	}
	session.inFlight = true
	rows := session.rows
	session.mu.Unlock()

	outcome, err := acc.SubmitBatch(ctx, rows)

	session.mu.Lock()
	defer session.mu.Unlock()
	session.inFlight = false
	if err != nil {
		return Outcome{}, errors.Wrap(err, "submitting batch")
	}
	session.done = true
	session.rows = nil
	session.preview = nil
	return outcome, nil
}

// Preview returns the bounded projection of the session's rows, or nil
// once the session has been consumed.
func (s *Session) Preview() *Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// RowCount reports how many validated rows the session still holds.
func (s *Session) RowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
