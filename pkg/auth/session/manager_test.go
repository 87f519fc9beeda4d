package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = value.(string)
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type mockKeyer struct{}

func (mockKeyer) AccessSessionKey(accessID string) string {
	return "sv:session:access:" + accessID
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: mockKeyer{}, ttl: time.Hour}
}

func TestGenerateStoresRefreshToken(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)

	token, err := mgr.Generate(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty refresh token")
	}
	if store.data["sv:session:access:access-1"] != token {
		t.Fatal("token not stored under the session key")
	}
}

func TestRotateIssuesNewPairAndInvalidatesOld(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	token, err := mgr.Generate(ctx, "access-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	newID, newToken, err := mgr.Rotate(ctx, "access-1", token)
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if newID == "access-1" || newToken == token {
		t.Fatal("rotation must mint a fresh id and token")
	}
	if _, ok := store.data["sv:session:access:access-1"]; ok {
		t.Fatal("old session should be deleted")
	}
	if store.data["sv:session:access:"+newID] != newToken {
		t.Fatal("new session not stored")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, _, err := mgr.Rotate(ctx, "access-1", "bogus"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRotateMissingSession(t *testing.T) {
	mgr := newTestManager(newMockStore())
	if _, _, err := mgr.Rotate(context.Background(), "missing", "token"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevokeAndHasSession(t *testing.T) {
	store := newMockStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	active, err := mgr.HasSession(ctx, "access-1")
	if err != nil || !active {
		t.Fatalf("expected active session, got %v %v", active, err)
	}

	if err := mgr.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	active, err = mgr.HasSession(ctx, "access-1")
	if err != nil || active {
		t.Fatalf("expected revoked session, got %v %v", active, err)
	}
}
