package session

import (
	"context"
	"testing"

	"github.com/committeehq/committee-client/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), nil, logger.Nop())
}

func TestStore_StatusLifecycle(t *testing.T) {
	store := newTestStore(t)

	if got := store.Status(); got != StatusLoading {
		t.Errorf("Status() before Load = %v, want loading", got)
	}

	store.Load()
	if got := store.Status(); got != StatusAnonymous {
		t.Errorf("Status() after empty Load = %v, want anonymous", got)
	}
	if store.IsAuthenticated() {
		t.Error("IsAuthenticated() = true, want false")
	}
}

func TestStore_SetAuthThenClearAuth(t *testing.T) {
	store := newTestStore(t)
	store.Load()

	store.SetAuth(Credentials{
		Token: "abc",
		User:  User{Name: "A", PhoneNo: "9876543210"},
	})

	if !store.IsAuthenticated() {
		t.Fatal("IsAuthenticated() after SetAuth = false, want true")
	}
	if got := store.Token(); got != "abc" {
		t.Errorf("Token() = %q, want abc", got)
	}
	if got := store.User(); got.Name != "A" || got.PhoneNo != "9876543210" {
		t.Errorf("User() = %+v, want name A, phone 9876543210", got)
	}
	if got := store.Status(); got != StatusAuthenticated {
		t.Errorf("Status() = %v, want authenticated", got)
	}

	store.ClearAuth()
	if store.IsAuthenticated() {
		t.Error("IsAuthenticated() after ClearAuth = true, want false")
	}
	if got := store.Token(); got != "" {
		t.Errorf("Token() after ClearAuth = %q, want empty", got)
	}
	if got := (store.User()); got != (User{}) {
		t.Errorf("User() after ClearAuth = %+v, want zero", got)
	}
}

func TestStore_PersistenceAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	first := NewStore(dir, nil, logger.Nop())
	first.Load()
	first.SetAuth(Credentials{
		Token: "persist-me",
		User:  User{Name: "A", Email: "a@example.com", Role: "ADMIN"},
	})

	// A fresh store over the same directory models an app restart.
	second := NewStore(dir, nil, logger.Nop())
	second.Load()

	if !second.IsAuthenticated() {
		t.Fatal("restarted store should be authenticated without re-login")
	}
	if got := second.Token(); got != "persist-me" {
		t.Errorf("Token() = %q, want persist-me", got)
	}
	user := second.User()
	if user.Name != "A" || user.Email != "a@example.com" || user.Role != "ADMIN" {
		t.Errorf("User() = %+v, want persisted profile", user)
	}
}

func TestStore_ClearSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	first := NewStore(dir, nil, logger.Nop())
	first.Load()
	first.SetAuth(Credentials{Token: "abc"})
	first.ClearAuth()

	second := NewStore(dir, nil, logger.Nop())
	second.Load()
	if second.IsAuthenticated() {
		t.Error("cleared session must not reappear after restart")
	}
}

func TestStore_HandleExpiry(t *testing.T) {
	dir := t.TempDir()
	logouts := 0
	store := NewStore(dir, func() { logouts++ }, logger.Nop())
	store.Load()
	store.SetAuth(Credentials{Token: "dead", User: User{Name: "A"}})

	if err := store.HandleExpiry(context.Background()); err != nil {
		t.Fatalf("HandleExpiry() error = %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("IsAuthenticated() after expiry = true, want false")
	}
	if logouts != 1 {
		t.Errorf("logout hook calls = %d, want 1", logouts)
	}

	// Persisted state must be gone as well.
	second := NewStore(dir, nil, logger.Nop())
	second.Load()
	if second.IsAuthenticated() {
		t.Error("expired session must not survive restart")
	}
}

func TestStore_CorruptBlobIsAnonymous(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil, logger.Nop())
	store.Load()
	store.SetAuth(Credentials{Token: "abc"})

	// Truncate the sealed blob to simulate corruption.
	file := NewSecureFile(dir, "session")
	if err := file.Seal([]byte("{not valid json")); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	second := NewStore(dir, nil, logger.Nop())
	second.Load()
	if second.IsAuthenticated() {
		t.Error("corrupt session blob should leave the store anonymous")
	}
	if got := second.Status(); got != StatusAnonymous {
		t.Errorf("Status() = %v, want anonymous", got)
	}
}
