package view

import (
	"context"
	"testing"

	"schoolmon/internal/i18n"
	"schoolmon/internal/model"
)

type memTokens struct {
	token   string
	removed bool
}

func (m *memTokens) Save(token string) error {
	m.token = token
	return nil
}

func (m *memTokens) Remove() error {
	m.token = ""
	m.removed = true
	return nil
}

func TestLoginRejectsBlankFields(t *testing.T) {
	api := newCountingAPI(newClient(t))
	nav := &fakeNav{}
	login := NewLogin(api, nav, nil)

	for _, creds := range [][2]string{{"", "x"}, {"demo", ""}, {"  ", "  "}} {
		if err := login.Submit(context.Background(), creds[0], creds[1]); err != nil {
			t.Fatalf("expected inline error only, got %v", err)
		}
		if got := login.Snapshot().Err; got != i18n.T("auth.missingCredentials") {
			t.Fatalf("unexpected inline error %q", got)
		}
	}
	if api.count("Authorize") != 0 {
		t.Fatalf("expected API not to be called")
	}
}

func TestLoginFailureStaysOnForm(t *testing.T) {
	nav := &fakeNav{}
	login := NewLogin(newClient(t), nav, nil)

	err := login.Submit(context.Background(), "demo", "wrong")
	if model.KindOf(err) != model.KindAuthFailed {
		t.Fatalf("expected AUTH_FAILED, got %v", err)
	}
	if got := login.Snapshot().Err; got != model.MsgInvalidCredentials {
		t.Fatalf("unexpected inline error %q", got)
	}
	if _, schools, _ := nav.counts(); schools != 0 {
		t.Fatalf("expected no navigation")
	}
}

func TestLoginAndLogout(t *testing.T) {
	client := newClient(t)
	nav := &fakeNav{}
	store := &memTokens{}
	login := NewLogin(client, nav, store)
	ctx := context.Background()

	if err := login.Submit(ctx, "demo", "ACLZBw6QCZ"); err != nil {
		t.Fatalf("login error: %v", err)
	}
	if _, schools, _ := nav.counts(); schools != 1 {
		t.Fatalf("expected navigation to schools")
	}
	if store.token == "" || !client.IsAuthenticated() {
		t.Fatalf("expected token to be persisted")
	}

	if err := login.Logout(ctx); err != nil {
		t.Fatalf("logout error: %v", err)
	}
	if logins, _, _ := nav.counts(); logins != 1 {
		t.Fatalf("expected navigation to login")
	}
	if !store.removed || client.IsAuthenticated() {
		t.Fatalf("expected session and token file to be cleared")
	}
}
