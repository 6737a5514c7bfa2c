package view

import (
	"context"
	"log"
	"strings"
	"sync"

	"schoolmon/internal/i18n"
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	Save(token string) error
	Remove() error
}

type LoginState struct {
	Submitting bool
	Err        string
}

type Login struct {
	api    API
	nav    Navigator
	tokens TokenStore

	mu       sync.Mutex
	state    LoginState
	onChange func()
}

// NewLogin builds the login controller. tokens may be nil when nothing is
// persisted.
func NewLogin(api API, nav Navigator, tokens TokenStore) *Login {
	return &Login{api: api, nav: nav, tokens: tokens}
}

func (l *Login) OnChange(fn func()) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

func (l *Login) set(state LoginState) {
	l.mu.Lock()
	l.state = state
	fn := l.onChange
	l.mu.Unlock()
	notify(fn)
}

// Submit authorizes and moves to the school list. Failures are shown inline;
// blank fields never reach the API.
func (l *Login) Submit(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		l.set(LoginState{Err: i18n.T("auth.missingCredentials")})
		return nil
	}
	l.set(LoginState{Submitting: true})

	resp, err := l.api.Authorize(ctx, username, password)
	if err != nil {
		l.set(LoginState{Err: err.Error()})
		return err
	}
	if l.tokens != nil {
		if err := l.tokens.Save(resp.Token); err != nil {
			log.Printf("save token failed: %v", err)
		}
	}
	l.set(LoginState{})
	l.nav.ToSchools()
	return nil
}

func (l *Login) Logout(ctx context.Context) error {
	err := l.api.Logout(ctx)
	if l.tokens != nil {
		if rmErr := l.tokens.Remove(); rmErr != nil {
			log.Printf("remove token failed: %v", rmErr)
		}
	}
	l.set(LoginState{})
	l.nav.ToLogin()
	return err
}

func (l *Login) Snapshot() LoginState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
