package importer

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/sqoolify/sqoolify/core"
)

func newTestService() *Service {
	return NewService(core.NewTestConfig())
}

func startSession(t *testing.T, svc *Service, dataRows int) *Session {
	schema := studentSchema()
	examples := make([]Row, dataRows)
	for i := range examples {
		examples[i] = Row{"first_name": "Jane", "last_name": "Doe", "email": "jane@example.com"}
	}
	session, err := svc.Start("students", "", schema, bytes.NewReader(schema.Template(examples)))
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return session
}

func Test_Service_Start_rejectsInvalidUpload(t *testing.T) {
	svc := newTestService()
	schema := studentSchema()

	in := "first_name,last_name\nJane,Doe\n" // email column missing
	_, err := svc.Start("students", "", schema, strings.NewReader(in))

	var vErr *core.ValidationError
	if assert.True(t, errors.As(err, &vErr)) {
		assert.Len(t, vErr.Fields, 1)
		assert.Equal(t, "file", vErr.Fields[0].Field)
	}
}

func Test_Service_Submit_reportsPartialOutcomeAndClearsPreview(t *testing.T) {
	svc := newTestService()
	session := startSession(t, svc, 5)
	assert.NotNil(t, session.Preview())

	acc := AcceptorFunc(func(ctx context.Context, rows []Row) (Outcome, error) {
		return Outcome{SuccessCount: 3, FailureCount: 2, Errors: []string{"row 4: duplicate email", "row 6: duplicate email"}}, nil
	})

	outcome, err := svc.Submit(context.Background(), session.ID, acc)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	assert.Equal(t, 3, outcome.SuccessCount)
	assert.Equal(t, 2, outcome.FailureCount)
	assert.Equal(t, outcome.SuccessCount+outcome.FailureCount, 5)

	// session stays open for the user to read the errors, but the stale
	// preview and rows are gone: a fresh upload is required.
	assert.Nil(t, session.Preview())
	assert.Zero(t, session.RowCount())

	_, err = svc.Submit(context.Background(), session.ID, acc)
	assert.Equal(t, ErrSessionDone, errors.Cause(err))
}

func Test_Service_Submit_atMostOnce(t *testing.T) {
	svc := newTestService()
	session := startSession(t, svc, 2)

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	acc := AcceptorFunc(func(ctx context.Context, rows []Row) (Outcome, error) {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return Outcome{SuccessCount: len(rows)}, nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Submit(context.Background(), session.ID, acc)
	}()

	<-started // first submission is in flight
	_, err := svc.Submit(context.Background(), session.ID, acc)
	assert.Equal(t, ErrSubmitInFlight, errors.Cause(err))

	close(release)
	<-done
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func Test_Service_Submit_transportErrorKeepsSessionUsable(t *testing.T) {
	svc := newTestService()
	session := startSession(t, svc, 2)

	boom := errors.New("connection reset")
	failing := AcceptorFunc(func(ctx context.Context, rows []Row) (Outcome, error) {
		return Outcome{}, boom
	})

	_, err := svc.Submit(context.Background(), session.ID, failing)
	assert.Equal(t, boom, errors.Cause(err))
	assert.NotNil(t, session.Preview())
	assert.Equal(t, 2, session.RowCount())

	// the user may confirm again; nothing was consumed
	working := AcceptorFunc(func(ctx context.Context, rows []Row) (Outcome, error) {
		return Outcome{SuccessCount: len(rows)}, nil
	})
	outcome, err := svc.Submit(context.Background(), session.ID, working)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	assert.Equal(t, 2, outcome.SuccessCount)
}

func Test_Service_GetFor_enforcesSessionBinding(t *testing.T) {
	svc := newTestService()
	schema := studentSchema()
	in := bytes.NewReader(schema.Template([]Row{{"first_name": "Jane", "last_name": "Doe", "email": "jane@example.com"}}))
	session, err := svc.Start("students", "school-1", schema, in)
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	got, err := svc.GetFor(session.ID, "students", "school-1")
	if assert.NoError(t, err) {
		assert.Equal(t, session.ID, got.ID)
	}

	_, err = svc.GetFor(session.ID, "teachers", "school-1") // wrong type
	assert.Equal(t, ErrSessionMismatch, errors.Cause(err))

	_, err = svc.GetFor(session.ID, "students", "school-2") // wrong owner
	assert.Equal(t, ErrSessionMismatch, errors.Cause(err))

	_, err = svc.GetFor("lol", "students", "school-1")
	assert.Equal(t, ErrSessionNotFound, errors.Cause(err))
}

func Test_Service_Drop(t *testing.T) {
	svc := newTestService()
	session := startSession(t, svc, 1)

	svc.Drop(session.ID)
	_, err := svc.Get(session.ID)
	assert.Equal(t, ErrSessionNotFound, errors.Cause(err))
}
