// Package apitest runs an in-process fake of the event-booking backend for
// tests. It speaks the same REST surface under /api/ and keeps everything in
// memory.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	bearerPrefix = "Bearer "
	jwtSecret    = "apitest-secret"
)

// Account is a backend user
type Account struct {
	ID       int64
	Email    string
	Username string
	Password string
	Role     string
	Active   bool
	Profile  map[string]any
}

// Request is one request the backend received
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
}

// Backend is the fake server
type Backend struct {
	server *httptest.Server

	mu           sync.Mutex
	accounts     map[string]*Account
	activations  map[string]string
	records      map[string][]map[string]any
	nextID       map[string]int64
	requests     []Request
	loginHolds   map[string]chan struct{}
	loginStarted chan string
	tokenSeq     int
}

// New starts a backend that is shut down when the test ends
func New(t testing.TB) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		accounts:     make(map[string]*Account),
		activations:  make(map[string]string),
		records:      make(map[string][]map[string]any),
		nextID:       make(map[string]int64),
		loginHolds:   make(map[string]chan struct{}),
		loginStarted: make(chan string, 16),
	}

	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)

	return b
}

// URL returns the API base URL
func (b *Backend) URL() string {
	return b.server.URL + "/api/"
}

// AddAccount registers an active account and returns it with its ID
func (b *Backend) AddAccount(a Account) *Account {
	b.mu.Lock()
	defer b.mu.Unlock()

	a.ID = b.allocID("accounts")
	if a.Role == "" {
		a.Role = "client"
	}
	if a.Profile == nil {
		a.Profile = map[string]any{}
	}
	acc := a
	b.accounts[acc.Email] = &acc
	return &acc
}

// Seed stores a record for resource (events, packages, bookings, payments,
// testimonials, announcements) and returns it with its assigned id
func (b *Backend) Seed(resource string, record map[string]any) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.insert(resource, record)
}

// Records returns a snapshot of the stored records for resource
func (b *Backend) Records(resource string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]map[string]any, len(b.records[resource]))
	for i, r := range b.records[resource] {
		out[i] = copyRecord(r)
	}
	return out
}

// Requests returns every request received so far
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// ActivationToken returns the token issued when email registered
func (b *Backend) ActivationToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for token, e := range b.activations {
		if e == email {
			return token
		}
	}
	return ""
}

// HoldLogin makes logins for email block until release is called or the
// client gives up. LoginStarted reports each held login as it arrives.
func (b *Backend) HoldLogin(email string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.loginHolds[email] = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(ch) })
	}
}

// LoginStarted yields the email of each held login once the backend has it
func (b *Backend) LoginStarted() <-chan string {
	return b.loginStarted
}

// IssueToken signs an access token for acc the same way login does
func (b *Backend) IssueToken(acc *Account, ttl time.Duration) (string, error) {
	b.mu.Lock()
	b.tokenSeq++
	jti := strconv.Itoa(b.tokenSeq)
	b.mu.Unlock()

	claims := jwt.MapClaims{
		"jti":        jti,
		"token_type": "access",
		"user_id":    acc.ID,
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

func (b *Backend) allocID(resource string) int64 {
	b.nextID[resource]++
	return b.nextID[resource]
}

func (b *Backend) insert(resource string, record map[string]any) map[string]any {
	r := copyRecord(record)
	r["id"] = b.allocID(resource)
	if _, ok := r["created_at"]; !ok {
		r["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	b.records[resource] = append(b.records[resource], r)
	return copyRecord(r)
}

func (b *Backend) find(resource, id string) map[string]any {
	for _, r := range b.records[resource] {
		if fmt.Sprint(r["id"]) == id {
			return r
		}
	}
	return nil
}

func (b *Backend) accountByID(id int64) *Account {
	for _, a := range b.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func copyRecord(r map[string]any) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func userJSON(a *Account) gin.H {
	u := gin.H{
		"id":       a.ID,
		"email":    a.Email,
		"username": a.Username,
		"role":     a.Role,
	}
	for k, v := range a.Profile {
		u[k] = v
	}
	return u
}

// userRef is how bookings and payments embed their owner
func userRef(a *Account) gin.H {
	return gin.H{
		"id":       a.ID,
		"username": a.Username,
		"email":    a.Email,
		"role":     a.Role,
	}
}

// mediaURL builds the absolute URL the backend serves uploads from
func mediaURL(c *gin.Context, dir, name string) string {
	return fmt.Sprintf("http://%s/media/%s/%s", c.Request.Host, dir, name)
}

func parseAmount(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	}
	return 0
}

// recordRequests logs each request before routing
func (b *Backend) recordRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
			Authorization: c.GetHeader("Authorization"),
			ContentType:   c.ContentType(),
		})
		b.mu.Unlock()
		c.Next()
	}
}

func extractBearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)
	return token, token != ""
}

// requireAuth resolves the bearer token to an account
func (b *Backend) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
			return
		}

		id, _ := claims["user_id"].(float64)

		b.mu.Lock()
		acc := b.accountByID(int64(id))
		b.mu.Unlock()
		if acc == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "User not found"})
			return
		}

		c.Set("account", acc)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		acc := currentAccount(c)
		if acc.Role != "admin" && acc.Role != "agency" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}

func currentAccount(c *gin.Context) *Account {
	v, _ := c.Get("account")
	acc, _ := v.(*Account)
	return acc
}
