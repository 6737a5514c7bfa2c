package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schoolmon/internal/auth"
	"schoolmon/internal/config"
	"schoolmon/internal/model"
	"schoolmon/internal/service"
)

type Server struct {
	cfg config.Config
	svc *service.Service
}

func NewServer(cfg config.Config, svc *service.Service) *Server {
	return &Server{cfg: cfg, svc: svc}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/authorize", s.handleAuthorize)
	r.Post("/auth/logout", s.handleLogout)

	r.Route("/schools", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListSchools)
		r.Get("/{schoolId}", s.handleGetSchool)
		r.Get("/{schoolId}/devices", s.handleListSchoolDevices)
	})
	r.With(s.authMiddleware).Post("/scan", s.handleScan)

	return r
}

type authorizeRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type scanRequest struct {
	Code string `json:"code"`
}

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, model.NewError(model.KindInvalidRequest, "Invalid request body"))
		return
	}
	resp, err := s.svc.Authorize(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r.Header.Get("Authorization"))
	if token != "" {
		if err := s.svc.Logout(r.Context(), token); err != nil {
			writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSchools(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, model.NewError(model.KindInvalidRequest, "Invalid page parameter"))
		return
	}
	limit, err := queryInt(r, "limit", s.svc.DefaultPageSize())
	if err != nil {
		writeError(w, model.NewError(model.KindInvalidRequest, "Invalid limit parameter"))
		return
	}
	resp, err := s.svc.LoadSchools(r.Context(), tokenFromContext(r.Context()), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSchool(w http.ResponseWriter, r *http.Request) {
	school, err := s.svc.LoadSchool(r.Context(), tokenFromContext(r.Context()), chi.URLParam(r, "schoolId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, school)
}

func (s *Server) handleListSchoolDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.svc.LoadSchoolDevices(r.Context(), tokenFromContext(r.Context()), chi.URLParam(r, "schoolId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, model.NewError(model.KindInvalidRequest, "Invalid request body"))
		return
	}
	result, err := s.svc.ScanQRCode(r.Context(), tokenFromContext(r.Context()), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	outcome := "rejected"
	if result.Success {
		outcome = "accepted"
	}
	scanOutcomes.WithLabelValues(outcome).Inc()
	if claims := claimsFromContext(r.Context()); claims != nil {
		log.Printf("scan %s user=%s device=%q", outcome, claims.Username, result.DeviceID)
	}
	writeJSON(w, http.StatusOK, result)
}

// authMiddleware rejects requests without a live session before any handler
// work. The service repeats the check, so handlers stay correct without it.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		claims, err := s.svc.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		ctx = context.WithValue(ctx, tokenKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type claimsKey struct{}

type tokenKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindAuthFailed, model.KindAuthRequired:
		return http.StatusUnauthorized
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	var apiErr *model.Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Printf("request aborted: %v", err)
		} else {
			log.Printf("internal error: %v", err)
		}
		apiErr = model.NewError(model.KindInternal, "Internal server error")
	}
	writeJSON(w, StatusFor(apiErr.Kind), ErrorBody{Message: apiErr.Message, Code: apiErr.Kind.Code()})
}
