package quotation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	appsession "github.com/rental/backoffice/internal/application/session"
	"github.com/rental/backoffice/internal/domain/quotation"
	domain "github.com/rental/backoffice/internal/domain/session"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/rental/backoffice/internal/infrastructure/auth"
	"github.com/rental/backoffice/internal/infrastructure/backend"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// wiredEditor connects an editor to a live session manager and backend
// client the same way the server does: 401 replies wipe the caller's session
// and a session reset drops its drafts.
type wiredEditor struct {
	editor   *Editor
	sessions *appsession.Manager
	store    *auth.InMemoryCredentialStore
}

func newWiredEditor(t *testing.T, quotations http.HandlerFunc) *wiredEditor {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"token":"tok-1","user":{"id":3,"username":"admin","role":"admin"}}`)
			return
		}
		quotations(w, r)
	}))
	t.Cleanup(srv.Close)

	var sessions *appsession.Manager
	client, err := backend.New(backend.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second},
		backend.WithTokenFunc(appsession.TokenFromContext),
		backend.WithUnauthorizedHandler(func(ctx context.Context) { sessions.HandleUnauthorized(ctx) }),
	)
	require.NoError(t, err)

	store := auth.NewInMemoryCredentialStore(time.Hour)
	sessions = appsession.NewManager(client, store, zap.NewNop())
	editor := NewEditor(client, nil, zap.NewNop())
	sessions.OnReset(func(id uuid.UUID) { editor.DropSession(id) })

	return &wiredEditor{editor: editor, sessions: sessions, store: store}
}

func (w *wiredEditor) login(t *testing.T) (*appsession.Session, context.Context) {
	t.Helper()
	s := w.sessions.Get(uuid.New())
	require.True(t, s.Login(t.Context(), "admin", "secret").IsAuthenticated)
	return s, appsession.WithSession(t.Context(), s)
}

func unauthorizedReply(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = io.WriteString(w, `{"message":"Token expired"}`)
}

// returnsWithin fails the test when call blocks longer than d
func returnsWithin[T any](t *testing.T, d time.Duration, call func() (T, error)) (T, error) {
	t.Helper()
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{v, err}
	}()
	select {
	case r := <-done:
		return r.v, r.err
	case <-time.After(d):
		t.Fatal("call did not return after an unauthorized backend reply")
		var zero T
		return zero, nil
	}
}

func TestEditor_UnauthorizedBackendReplyDropsSessionDrafts(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, e *Editor, owner, id uuid.UUID) (any, error)
	}{
		{
			name: "submit",
			run: func(ctx context.Context, e *Editor, owner, id uuid.UUID) (any, error) {
				return e.Submit(ctx, owner, id)
			},
		},
		{
			name: "submit twice",
			run: func(ctx context.Context, e *Editor, owner, id uuid.UUID) (any, error) {
				if _, err := e.Submit(ctx, owner, id); !backend.IsUnauthorized(err) {
					return nil, err
				}
				return e.Submit(ctx, owner, id)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWiredEditor(t, func(rw http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/quotations", r.URL.Path)
				assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
				unauthorizedReply(rw, r)
			})
			s, ctx := w.login(t)
			other, _ := w.login(t)

			d, err := w.editor.Create(ctx, s.ID())
			require.NoError(t, err)
			buildWorkedExample(t, w.editor, s.ID(), d.ID)
			kept, err := w.editor.Create(t.Context(), other.ID())
			require.NoError(t, err)

			_, err = returnsWithin(t, 5*time.Second, func() (any, error) {
				return tt.run(ctx, w.editor, s.ID(), d.ID)
			})
			require.Error(t, err)
			if !backend.IsUnauthorized(err) {
				assert.ErrorIs(t, err, ErrDraftNotFound)
			}

			assert.False(t, s.State().IsAuthenticated)
			_, err = w.store.Load(t.Context(), s.ID())
			assert.ErrorIs(t, err, domain.ErrNoCredentials)

			_, err = w.editor.Get(s.ID(), d.ID)
			assert.ErrorIs(t, err, ErrDraftNotFound)
			assert.Equal(t, 1, w.editor.OpenDrafts())
			_, err = w.editor.Get(other.ID(), kept.ID)
			assert.NoError(t, err, "other sessions keep their drafts")
			assert.True(t, other.State().IsAuthenticated)
		})
	}
}

func TestEditor_DropSessionDuringLockedOperation(t *testing.T) {
	tests := []struct {
		name   string
		method string
		open   bool
	}{
		{name: "create", method: "Create"},
		{name: "update", method: "Update", open: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, repo, _ := newTestEditor()
			owner := uuid.New()

			var id uuid.UUID
			if tt.open {
				repo.On("Get", mock.Anything, int64(5)).Return(&quotation.Quotation{
					ID: 5, QuotationNumber: "Q-20240301-0005", ClientName: "CV Nusantara",
					IssueDate: "2024-03-01", Status: quotation.StatusDraft,
					Items: []quotation.ItemRecord{{ID: 50, ItemName: "Stage", Quantity: 1, PricePerDay: decimal.NewFromInt(100), Days: 1}},
				}, nil)
				d, err := e.Open(context.Background(), owner, 5)
				require.NoError(t, err)
				id = d.ID
			} else {
				d, _ := e.Create(context.Background(), owner)
				id = d.ID
				buildWorkedExample(t, e, owner, id)
			}

			// The backend hook runs on the submitting goroutine while the
			// draft is locked
			args := []any{mock.Anything, mock.Anything}
			if tt.open {
				args = []any{mock.Anything, int64(5), mock.Anything}
			}
			repo.On(tt.method, args...).
				Run(func(mock.Arguments) { assert.Equal(t, 1, e.DropSession(owner)) }).
				Return(nil, shared.ErrBackendUnauthorized)

			_, err := returnsWithin(t, 5*time.Second, func() (*SubmitResult, error) {
				return e.Submit(context.Background(), owner, id)
			})
			assert.ErrorIs(t, err, shared.ErrBackendUnauthorized)

			_, err = e.Get(owner, id)
			assert.ErrorIs(t, err, ErrDraftNotFound)
			_, err = e.Submit(context.Background(), owner, id)
			assert.ErrorIs(t, err, ErrDraftNotFound)
			assert.Equal(t, 0, e.OpenDrafts())
			repo.AssertExpectations(t)
		})
	}
}
