package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// faultyStore fails intent reads with a fixed error.
type faultyStore struct {
	*memPaymentStore
	getErr error
}

func (f *faultyStore) GetIntent(ctx context.Context, id string) (*Intent, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.memPaymentStore.GetIntent(ctx, id)
}

func newPaymentServer(store Store) *httptest.Server {
	r := chi.NewRouter()
	RegisterRoutes(r, newProcessor(store, &mockTransferer{}), store, zap.NewNop())
	return httptest.NewServer(r)
}

func getJSON(t *testing.T, url string) (int, envelope) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, env
}

func TestGetIntent_ReturnsIntentWithSteps(t *testing.T) {
	store := newMemPaymentStore()
	intent := newProcessor(store, &mockTransferer{}).planIntent(twoItemOrder())
	if err := store.CreateIntent(context.Background(), intent); err != nil {
		t.Fatalf("CreateIntent() failed: %v", err)
	}

	srv := newPaymentServer(store)
	defer srv.Close()

	status, env := getJSON(t, srv.URL+"/payments/"+intent.ID)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("expected success envelope, got status %d body %+v", status, env)
	}

	var got intentResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("failed to decode intent payload: %v", err)
	}
	if got.ID != intent.ID {
		t.Fatalf("intent id mismatch: got %s want %s", got.ID, intent.ID)
	}
	if got.Total != "50" {
		t.Fatalf("expected total 50, got %s", got.Total)
	}
	if len(got.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(got.Steps))
	}
}

func TestGetIntent_NotFound(t *testing.T) {
	srv := newPaymentServer(newMemPaymentStore())
	defer srv.Close()

	status, env := getJSON(t, srv.URL+"/payments/no-such-intent")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if env.Success || env.Error.Message != "payment intent not found" {
		t.Fatalf("unexpected error envelope: %+v", env)
	}
}

func TestGetIntent_StoreFailure(t *testing.T) {
	store := &faultyStore{
		memPaymentStore: newMemPaymentStore(),
		getErr:          errors.New("connection reset"),
	}
	srv := newPaymentServer(store)
	defer srv.Close()

	status, env := getJSON(t, srv.URL+"/payments/some-intent")
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	// The underlying store error must not leak to the client.
	if env.Success || env.Error.Message != "Internal Server Error" {
		t.Fatalf("unexpected error envelope: %+v", env)
	}
}
