// Package service implements the mock school API: credential check, token
// gate, paginated school listing, device lookup and QR scan validation, each
// behind a simulated network latency.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"schoolmon/internal/auth"
	"schoolmon/internal/config"
	"schoolmon/internal/crypto"
	"schoolmon/internal/db"
	"schoolmon/internal/model"
	"schoolmon/internal/tokens"
)

const (
	DefaultPageSize = 5
	MaxPageSize     = 100
)

type Options struct {
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	DefaultPageSize int
	Latency         LatencyProfile
}

type Service struct {
	store    *db.Store
	sessions tokens.Registry
	opts     Options
	wait     *waiter
}

// OptionsFromConfig derives service options from the server config. Latency
// is zero when MOCK_LATENCY is off.
func OptionsFromConfig(cfg config.Config) Options {
	opts := Options{
		JWTSecret:       cfg.JWTSecret,
		JWTIssuer:       cfg.JWTIssuer,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		DefaultPageSize: cfg.DefaultPageSize,
	}
	if cfg.MockLatency {
		opts.Latency = DefaultLatency()
	}
	return opts
}

func New(store *db.Store, sessions tokens.Registry, opts Options) *Service {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = DefaultPageSize
	}
	if opts.AccessTokenTTL <= 0 {
		opts.AccessTokenTTL = 12 * time.Hour
	}
	return &Service{
		store:    store,
		sessions: sessions,
		opts:     opts,
		wait:     newWaiter(),
	}
}

func (s *Service) DefaultPageSize() int {
	return s.opts.DefaultPageSize
}

func (s *Service) Authorize(ctx context.Context, username, password string) (model.AuthResponse, error) {
	if err := s.wait.sleep(ctx, s.opts.Latency.Authorize); err != nil {
		return model.AuthResponse{}, err
	}

	cred, err := s.store.GetCredential(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return model.AuthResponse{}, model.ErrAuthFailed
		}
		return model.AuthResponse{}, err
	}
	if err := crypto.CheckPassword(cred.PasswordHash, password); err != nil {
		return model.AuthResponse{}, model.ErrAuthFailed
	}

	token, sessionID, err := auth.NewAccessToken(s.opts.JWTSecret, s.opts.JWTIssuer, s.opts.AccessTokenTTL, auth.Claims{
		UserID:   cred.UserID,
		Username: cred.Username,
	})
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}
	if err := s.sessions.Activate(ctx, sessionID, s.opts.AccessTokenTTL); err != nil {
		return model.AuthResponse{}, fmt.Errorf("register session: %w", err)
	}

	return model.AuthResponse{
		Token: token,
		User:  model.User{ID: cred.UserID, Username: cred.Username},
	}, nil
}

// Authenticate is the session gate shared by every data operation. An empty,
// malformed, expired or revoked token yields AUTH_REQUIRED.
func (s *Service) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, model.ErrAuthRequired
	}
	claims, err := auth.ParseToken(s.opts.JWTSecret, s.opts.JWTIssuer, token)
	if err != nil {
		return nil, model.ErrAuthRequired
	}
	active, err := s.sessions.Active(ctx, claims.SessionID())
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !active {
		return nil, model.ErrAuthRequired
	}
	return claims, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := auth.ParseToken(s.opts.JWTSecret, s.opts.JWTIssuer, token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Service) LoadSchools(ctx context.Context, token string, page, limit int) (model.Page[model.School], error) {
	if _, err := s.Authenticate(ctx, token); err != nil {
		return model.Page[model.School]{}, err
	}
	if err := s.wait.sleep(ctx, s.opts.Latency.Read); err != nil {
		return model.Page[model.School]{}, err
	}

	page, limit = s.normalizePage(page, limit)
	total, err := s.store.CountSchools(ctx)
	if err != nil {
		return model.Page[model.School]{}, err
	}
	totalPages := (total + limit - 1) / limit
	// Pages past the end never reach the offset product, which can overflow.
	schools := []model.School{}
	if page <= totalPages {
		schools, err = s.store.ListSchools(ctx, (page-1)*limit, limit)
		if err != nil {
			return model.Page[model.School]{}, err
		}
	}
	return model.Page[model.School]{
		Data:       schools,
		Page:       page,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}, nil
}

func (s *Service) normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.opts.DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func (s *Service) LoadSchool(ctx context.Context, token, schoolID string) (model.School, error) {
	if _, err := s.Authenticate(ctx, token); err != nil {
		return model.School{}, err
	}
	if err := s.wait.sleep(ctx, s.opts.Latency.Read); err != nil {
		return model.School{}, err
	}

	school, err := s.store.GetSchool(ctx, schoolID)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return model.School{}, model.ErrNotFound
		}
		return model.School{}, err
	}
	return school, nil
}

func (s *Service) LoadSchoolDevices(ctx context.Context, token, schoolID string) ([]model.Device, error) {
	if _, err := s.Authenticate(ctx, token); err != nil {
		return nil, err
	}
	if err := s.wait.sleep(ctx, s.opts.Latency.Read); err != nil {
		return nil, err
	}

	devices, err := s.store.ListSchoolDevices(ctx, schoolID)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return devices, nil
}

// ScanQRCode never fails for an unknown code; it reports success:false
// instead. Only the session gate and context cancellation return errors.
func (s *Service) ScanQRCode(ctx context.Context, token, code string) (model.ScanResult, error) {
	if _, err := s.Authenticate(ctx, token); err != nil {
		return model.ScanResult{}, err
	}
	if err := s.wait.sleep(ctx, s.opts.Latency.Scan); err != nil {
		return model.ScanResult{}, err
	}

	ok, err := s.store.QRCodeExists(ctx, code)
	if err != nil {
		return model.ScanResult{}, err
	}
	if !ok {
		return model.ScanResult{Success: false, Message: model.MsgInvalidQRCode}, nil
	}
	return model.ScanResult{
		Success:  true,
		Message:  model.MsgScanSucceeded,
		DeviceID: DeviceIDFromCode(code),
	}, nil
}

// DeviceIDFromCode returns the second ":"-separated segment of a QR payload.
func DeviceIDFromCode(code string) string {
	parts := strings.Split(code, ":")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
