package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cockpit/pkg/secrets"
)

// SessionCookie is the name of the session credential cookie. Clients never
// read it; it exists so the cookie jar round-trips it.
const SessionCookie = "cockpit_session"

// BackendUser is a seeded account on the fake backend.
type BackendUser struct {
	ID           string
	Email        string
	passwordHash string
}

// BackendTenant is a seeded tenant.
type BackendTenant struct {
	ID     string
	Name   string
	Slug   string
	Status string
}

// BackendProject is a seeded project within a tenant.
type BackendProject struct {
	ID       string
	TenantID string
	Name     string
	Slug     string
	Active   bool
}

type plannedFailure struct {
	status int
	code   string
}

// Backend is an in-process fake of the dashboard API. It speaks the real
// envelope contract ({success, data, meta}), issues signed session cookies,
// and serves the membership directory from seeded fixtures, so client and
// session tests exercise the full wire path without a real server.
type Backend struct {
	mu          sync.Mutex
	srv         *httptest.Server
	signingKey  []byte
	sessionTTL  time.Duration
	users       map[string]*BackendUser // keyed by email
	tenants     []*BackendTenant
	projects    []*BackendProject
	memberships map[string]map[string]string // userID -> tenantID -> role
	defaults    map[string]string            // userID -> default tenant slug
	hits        map[string]int
	failures    map[string][]plannedFailure
	lastDevice  string
}

// NewBackend starts a fake backend with a random signing key and a one hour
// session TTL. Callers seed fixtures and must Close it.
func NewBackend() *Backend {
	b := &Backend{
		signingKey:  []byte(uuid.NewString()),
		sessionTTL:  time.Hour,
		users:       make(map[string]*BackendUser),
		memberships: make(map[string]map[string]string),
		defaults:    make(map[string]string),
		hits:        make(map[string]int),
		failures:    make(map[string][]plannedFailure),
	}
	b.srv = httptest.NewServer(b.router())
	return b
}

// URL returns the backend's base URL.
func (b *Backend) URL() string { return b.srv.URL }

// Close shuts the backend down.
func (b *Backend) Close() { b.srv.Close() }

// SetSessionTTL overrides the lifetime of newly issued sessions. Short TTLs
// make proactive-refresh and expiry paths testable.
func (b *Backend) SetSessionTTL(ttl time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionTTL = ttl
}

// SeedUser registers an account with a bcrypt-hashed password.
func (b *Backend) SeedUser(email, password string) BackendUser {
	hash, err := secrets.Hash(password)
	if err != nil {
		panic(err)
	}
	u := &BackendUser{ID: uuid.NewString(), Email: email, passwordHash: hash}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[email] = u
	return *u
}

// SeedTenant registers a tenant visible in the global directory.
func (b *Backend) SeedTenant(name, slug string) BackendTenant {
	t := &BackendTenant{ID: uuid.NewString(), Name: name, Slug: slug, Status: "active"}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tenants = append(b.tenants, t)
	return *t
}

// SeedProject registers a project under a tenant.
func (b *Backend) SeedProject(tenantID, name, slug string, active bool) BackendProject {
	p := &BackendProject{ID: uuid.NewString(), TenantID: tenantID, Name: name, Slug: slug, Active: active}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projects = append(b.projects, p)
	return *p
}

// Grant gives a user a role in a tenant.
func (b *Backend) Grant(userID, tenantID, role string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.memberships[userID] == nil {
		b.memberships[userID] = make(map[string]string)
	}
	b.memberships[userID][tenantID] = role
}

// SetDefaultTenant stores the user's default-tenant preference.
func (b *Backend) SetDefaultTenant(userID, slug string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.defaults[userID] = slug
}

// FailNext arranges for the next n requests to path to fail with the given
// status and wire error code, before any handler runs.
func (b *Backend) FailNext(path string, n, status int, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := 0; i < n; i++ {
		b.failures[path] = append(b.failures[path], plannedFailure{status: status, code: code})
	}
}

// Hits reports how many requests reached the given path, including ones
// that were failed by FailNext.
func (b *Backend) Hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

// LastDeviceFingerprint returns the fingerprint computed from the most
// recent login's User-Agent.
func (b *Backend) LastDeviceFingerprint() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastDevice
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.observe)

	r.Post("/v1/auth/login", b.handleLogin)
	r.Post("/v1/auth/refresh", b.handleRefresh)
	r.Post("/v1/auth/logout", b.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(b.requireSession)
		r.Get("/v1/me/memberships", b.handleMemberships)
		r.Get("/v1/me/preferences", b.handlePreferences)
		r.Get("/v1/tenants/{slug}", b.handleTenantLookup)
		r.Get("/v1/tenants/{id}/membership", b.handleMembershipCheck)
		r.Get("/v1/tenants/{id}/projects", b.handleProjects)
	})
	return r
}

// observe counts every request and applies planned failures.
func (b *Backend) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.URL.Path]++
		var fail *plannedFailure
		if q := b.failures[r.URL.Path]; len(q) > 0 {
			fail = &q[0]
			b.failures[r.URL.Path] = q[1:]
		}
		b.mu.Unlock()
		if fail != nil {
			writeError(w, fail.status, fail.code, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

func (b *Backend) issueCookie(w http.ResponseWriter, userID string) (expiresAt time.Time) {
	b.mu.Lock()
	ttl := b.sessionTTL
	key := b.signingKey
	b.mu.Unlock()

	expiresAt = time.Now().Add(ttl)
	claims := sessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ID:        uuid.NewString(),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		panic(err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return expiresAt
}

// sessionFrom validates the cookie. The second return distinguishes a
// session that existed but expired from one that never existed.
func (b *Backend) sessionFrom(r *http.Request) (userID string, expired bool, ok bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return "", false, false
	}
	b.mu.Lock()
	key := b.signingKey
	b.mu.Unlock()

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(c.Value, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		// An otherwise well-formed token past its exp is an expired
		// session, not a missing one.
		if claims.Subject != "" && claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
			return "", true, false
		}
		return "", false, false
	}
	return claims.Subject, false, true
}

func (b *Backend) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, expired, ok := b.sessionFrom(r)
		if !ok {
			if expired {
				writeError(w, http.StatusUnauthorized, "session_expired", "session has expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		r.Header.Set("X-Backend-User", userID)
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed login request")
		return
	}

	b.mu.Lock()
	u := b.users[req.Email]
	b.mu.Unlock()
	if u == nil || secrets.Verify(req.Password, u.passwordHash) != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	fp := DeviceFingerprint(r.UserAgent())
	b.mu.Lock()
	b.lastDevice = fp
	b.mu.Unlock()
	w.Header().Set("X-Device-Fingerprint", fp)

	expiresAt := b.issueCookie(w, u.ID)
	writeSuccess(w, http.StatusOK, bootstrapBody(u.ID, expiresAt), nil)
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	userID, expired, ok := b.sessionFrom(r)
	if !ok {
		if expired {
			writeError(w, http.StatusUnauthorized, "session_expired", "session has expired")
			return
		}
		writeError(w, http.StatusUnauthorized, "unauthorized", "no session to refresh")
		return
	}
	expiresAt := b.issueCookie(w, userID)
	writeSuccess(w, http.StatusOK, bootstrapBody(userID, expiresAt), nil)
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeSuccess(w, http.StatusOK, map[string]any{}, nil)
}

func bootstrapBody(userID string, expiresAt time.Time) map[string]any {
	return map[string]any{
		"user":       map[string]any{"id": userID},
		"expires_at": expiresAt.UnixMilli(),
		"expires_in": time.Until(expiresAt).Milliseconds(),
	}
}

func (b *Backend) handleMemberships(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-Backend-User")

	b.mu.Lock()
	var rows []map[string]any
	for _, t := range b.tenants {
		role, member := b.memberships[userID][t.ID]
		if !member {
			continue
		}
		rows = append(rows, map[string]any{
			"tenant_id":   t.ID,
			"tenant_name": t.Name,
			"tenant_slug": t.Slug,
			"role":        role,
			"status":      t.Status,
		})
	}
	b.mu.Unlock()

	writeList(w, r, rows)
}

func (b *Backend) handlePreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-Backend-User")
	b.mu.Lock()
	slug := b.defaults[userID]
	b.mu.Unlock()
	writeSuccess(w, http.StatusOK, map[string]any{"default_tenant_slug": slug}, nil)
}

func (b *Backend) handleTenantLookup(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	userID := r.Header.Get("X-Backend-User")

	b.mu.Lock()
	var found *BackendTenant
	for _, t := range b.tenants {
		if t.Slug == slug {
			found = t
			break
		}
	}
	var member bool
	if found != nil {
		_, member = b.memberships[userID][found.ID]
	}
	b.mu.Unlock()

	if found == nil {
		writeError(w, http.StatusNotFound, "not_found", "tenant not found")
		return
	}
	if !member {
		writeError(w, http.StatusForbidden, "forbidden", "not a member of this tenant")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"id":   found.ID,
		"name": found.Name,
		"slug": found.Slug,
	}, nil)
}

func (b *Backend) handleMembershipCheck(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "id")
	userID := r.Header.Get("X-Backend-User")

	b.mu.Lock()
	role, member := b.memberships[userID][tenantID]
	b.mu.Unlock()

	if !member {
		writeError(w, http.StatusForbidden, "forbidden", "not a member of this tenant")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"role": role}, nil)
}

func (b *Backend) handleProjects(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "id")
	userID := r.Header.Get("X-Backend-User")

	b.mu.Lock()
	_, member := b.memberships[userID][tenantID]
	var rows []map[string]any
	if member {
		for _, p := range b.projects {
			if p.TenantID != tenantID {
				continue
			}
			rows = append(rows, map[string]any{
				"id":        p.ID,
				"tenant_id": p.TenantID,
				"name":      p.Name,
				"slug":      p.Slug,
				"active":    p.Active,
			})
		}
	}
	b.mu.Unlock()

	if !member {
		writeError(w, http.StatusForbidden, "forbidden", "not a member of this tenant")
		return
	}
	writeList(w, r, rows)
}

func writeSuccess(w http.ResponseWriter, status int, data any, meta map[string]any) {
	body := map[string]any{"success": true, "data": data}
	if meta != nil {
		body["meta"] = meta
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeList pages a full result set and attaches pagination meta in the
// backend's wire shape.
func writeList(w http.ResponseWriter, r *http.Request, rows []map[string]any) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "page_size", 50)

	total := len(rows)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	windowed := rows[start:end]
	if windowed == nil {
		windowed = []map[string]any{}
	}
	writeSuccess(w, http.StatusOK, windowed, map[string]any{
		"pagination": map[string]any{
			"page":       page,
			"page_size":  size,
			"total":      total,
			"total_page": totalPages,
			"has_next":   page < totalPages,
			"has_prev":   page > 1,
		},
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]any{"code": code, "message": message},
	})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
