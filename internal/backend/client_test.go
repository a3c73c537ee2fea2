package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"vega-tracker/internal/domain"
)

// fakeBackend is an in-memory stand-in for the persistence backend, serving
// the same routes over httptest.
type fakeBackend struct {
	mu      sync.Mutex
	users   map[string]*domain.UserRecord
	updates int
	creates int
	broken  bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{users: map[string]*domain.UserRecord{}}
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/Users/GetUser/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.broken {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		record, ok := f.users[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(record)
	})

	mux.HandleFunc("POST /api/Users/CreateUser", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var req struct {
			ID              string   `json:"id"`
			UsernameHistory []string `json:"usernameHistory"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		now := time.Now().UTC()
		record := &domain.UserRecord{ID: req.ID, UsernameHistory: req.UsernameHistory, CreatedAt: now, UpdatedAt: now}
		f.users[req.ID] = record
		f.creates++
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(record)
	})

	mux.HandleFunc("PUT /api/Users/UpdateUser/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		record, ok := f.users[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req struct {
			UsernameHistory []string `json:"usernameHistory"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		record.UsernameHistory = req.UsernameHistory
		record.UpdatedAt = time.Now().UTC()
		f.updates++
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/Winrate/GetWinrateForUser", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	return mux
}

func newTestClients(t *testing.T) (*fakeBackend, *UserRecordClient, *WinrateClient) {
	t.Helper()
	fake := newFakeBackend()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := &Client{
		http:    &fasthttp.Client{},
		baseURL: srv.URL,
		apiKey:  "test-key",
		logger:  zerolog.Nop(),
	}
	return fake, NewUserRecordClient(client, zerolog.Nop()), NewWinrateClient(client, zerolog.Nop())
}

func TestReconcile_CreatesOnFirstSight(t *testing.T) {
	fake, users, _ := newTestClients(t)

	record := users.Reconcile(context.Background(), "18715508", "Nova")

	assert.Equal(t, domain.RecordCreated, record.Origin)
	assert.Equal(t, []string{"Nova"}, record.UsernameHistory)
	assert.Equal(t, 1, fake.creates)
}

func TestReconcile_Idempotent(t *testing.T) {
	fake, users, _ := newTestClients(t)

	first := users.Reconcile(context.Background(), "18715508", "Nova")
	second := users.Reconcile(context.Background(), "18715508", "Nova")

	assert.Equal(t, domain.RecordCreated, first.Origin)
	assert.Equal(t, domain.RecordExisting, second.Origin)
	assert.Equal(t, []string{"Nova"}, second.UsernameHistory)
	assert.Equal(t, 1, fake.creates)
	assert.Equal(t, 0, fake.updates)
}

func TestReconcile_AppendsNewAliasOnce(t *testing.T) {
	fake, users, _ := newTestClients(t)
	ctx := context.Background()

	users.Reconcile(ctx, "18715508", "Nova")
	users.Reconcile(ctx, "18715508", "Supernova")
	record := users.Reconcile(ctx, "18715508", "Nova")

	assert.Equal(t, domain.RecordExisting, record.Origin)
	assert.Equal(t, []string{"Nova", "Supernova"}, record.UsernameHistory)
	assert.Equal(t, 1, fake.updates)
}

func TestReconcile_DegradesWhenBackendFails(t *testing.T) {
	fake, users, _ := newTestClients(t)
	fake.broken = true

	record := users.Reconcile(context.Background(), "18715508", "Nova")

	require.NotNil(t, record)
	assert.Equal(t, domain.RecordDegraded, record.Origin)
	assert.Equal(t, "18715508", record.ID)
	assert.Equal(t, []string{"Nova"}, record.UsernameHistory)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestWinrateGet_NotFoundIsEmpty(t *testing.T) {
	_, _, winrates := newTestClients(t)

	snapshots, err := winrates.Get(context.Background(), "18715508", 2024)
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

func TestWinrateGet_NonNumericPlayerID(t *testing.T) {
	_, _, winrates := newTestClients(t)

	_, err := winrates.Get(context.Background(), "not-a-number", 2024)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
