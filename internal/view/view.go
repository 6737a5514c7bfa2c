// Package view holds the screen controllers: login, the paginated school
// list, school detail and the QR scan flow, plus the shared error notifier.
// They are renderer-agnostic; the TUI drives them and tests drive them with
// fake collaborators.
package view

import (
	"context"
	"time"

	"schoolmon/internal/model"
)

// API is the client surface the controllers depend on. Implementations keep
// a session and clear it on AUTH_REQUIRED.
type API interface {
	Authorize(ctx context.Context, username, password string) (model.AuthResponse, error)
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	LoadSchools(ctx context.Context, page, limit int) (model.Page[model.School], error)
	LoadSchool(ctx context.Context, schoolID string) (model.School, error)
	LoadSchoolDevices(ctx context.Context, schoolID string) ([]model.Device, error)
	ScanQRCode(ctx context.Context, code string) (model.ScanResult, error)
}

type Navigator interface {
	ToLogin()
	ToSchools()
	ToSchool(schoolID string)
}

type Timer interface {
	Stop() bool
}

// Clock schedules delayed callbacks. Callbacks run on their own goroutine.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func RealClock() Clock {
	return realClock{}
}

func notify(fn func()) {
	if fn != nil {
		fn()
	}
}
