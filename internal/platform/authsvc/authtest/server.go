// Package authtest runs a fake auth service for tests. Tokens are real
// HS256 JWTs so expiry and tampering behave as they do in production.
package authtest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BasePath is where the fake mounts its routes.
const BasePath = "/api/auth"

// Request is a call received by the fake.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type user struct {
	id       string
	password string
	role     string
}

// Server is a fake auth service.
type Server struct {
	srv    *httptest.Server
	secret []byte

	mu       sync.Mutex
	users    map[string]user
	revoked  map[string]bool
	requests []Request
}

// NewServer starts a fake auth service. It is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret:  []byte("authtest-signing-key"),
		users:   make(map[string]user),
		revoked: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+BasePath+"/login", s.login)
	mux.HandleFunc("GET "+BasePath+"/validate-token", s.validate)
	mux.HandleFunc("POST "+BasePath+"/logout", s.logout)

	s.srv = httptest.NewServer(s.record(mux))
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the base URL of the fake, including BasePath.
func (s *Server) URL() string {
	return s.srv.URL + BasePath
}

// Close stops the fake so later calls fail at the transport level.
func (s *Server) Close() {
	s.srv.Close()
}

// AddUser registers credentials accepted by login.
func (s *Server) AddUser(identifier, password, id, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[identifier] = user{id: id, password: password, role: role}
}

// Issue mints a token for subject that expires after ttl. A negative ttl
// yields an already expired token.
func (s *Server) Issue(t testing.TB, subject, role string, ttl time.Duration) string {
	t.Helper()
	token, err := s.sign(subject, role, ttl)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sign(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parse(r *http.Request) (string, jwt.MapClaims, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return "", nil, errors.New("missing bearer token")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	revoked := s.revoked[raw]
	s.mu.Unlock()
	if revoked {
		return "", nil, errors.New("token revoked")
	}
	return raw, claims, nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Solicitud invalida"})
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Identifier]
	s.mu.Unlock()
	if !ok || u.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Credenciales invalidas"})
		return
	}

	token, err := s.sign(u.id, u.role, time.Hour)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  map[string]any{"id": u.id, "role": u.role, "username": req.Identifier},
	})
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	_, claims, err := s.parse(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Token invalido o expirado"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  map[string]any{"id": claims["sub"], "role": claims["role"]},
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	raw, _, err := s.parse(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Token invalido o expirado"})
		return
	}

	s.mu.Lock()
	s.revoked[raw] = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Sesion cerrada exitosamente"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
