package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/vadimbarashkov/shortly/internal/config"
	"github.com/vadimbarashkov/shortly/internal/token"
	"github.com/vadimbarashkov/shortly/pkg/response"
)

type ctxKey int

const userIDKey ctxKey = iota

// userIDFrom returns the authenticated user ID stored by Authentication.
func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// AccessTokenVerifier validates a bearer token and returns the user ID.
type AccessTokenVerifier interface {
	VerifyAccessToken(tokenStr string) (int64, error)
}

// Authentication rejects requests without a valid bearer access token and
// stores the user ID in the request context.
func Authentication(verifier AccessTokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorResponse(
					response.CodeAccessTokenError, "Access token required."))
				return
			}

			userID, err := verifier.VerifyAccessToken(tokenStr)
			if err != nil {
				code := response.CodeAccessTokenError
				msg := "Invalid access token."
				if errors.Is(err, token.ErrTokenExpired) {
					code = response.CodeAccessTokenExpired
					msg = "Access token expired."
				}

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorResponse(code, msg))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rateCategory names one independent request budget.
type rateCategory string

const (
	rateBasic     rateCategory = "basic"
	rateAuth      rateCategory = "auth"
	ratePassReset rateCategory = "passReset"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client IP and category. Buckets
// refill over the configured window and idle entries are evicted in the
// background.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	window  time.Duration
	budgets map[rateCategory]int
}

func NewRateLimiter(cfg config.RateLimit) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		window:  cfg.Window,
		budgets: map[rateCategory]int{
			rateBasic:     cfg.Basic,
			rateAuth:      cfg.Auth,
			ratePassReset: cfg.PassReset,
		},
	}

	go rl.cleanup()

	return rl
}

// Limit returns a middleware enforcing the category's budget per client IP.
func (rl *RateLimiter) Limit(category rateCategory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(category, clientIP(r)) {
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.TooManyRequestsResponse)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(category rateCategory, ip string) bool {
	key := string(category) + ":" + ip

	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[key]
	if !ok {
		budget := rl.budgets[category]
		client = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(budget)/rl.window.Seconds()), budget),
		}
		rl.clients[key] = client
	}

	client.lastSeen = time.Now()

	return client.limiter.Allow()
}

func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(rl.window)

		rl.mu.Lock()
		for key, client := range rl.clients {
			if time.Since(client.lastSeen) > rl.window {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
