package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type clientInfo struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window per-IP request counter.
type RateLimiter struct {
	rpm     int
	window  time.Duration
	mtx     sync.Mutex
	clients map[string]*clientInfo
	now     func() time.Time
}

func NewRateLimiter(rpm int) *RateLimiter {
	return &RateLimiter{
		rpm:     rpm,
		window:  time.Minute,
		clients: make(map[string]*clientInfo),
		now:     time.Now,
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIp(r)
		now := l.now()

		l.mtx.Lock()

		info, exists := l.clients[ip]
		if !exists {
			info = &clientInfo{
				count:   1,
				resetAt: now.Add(l.window),
			}
			l.clients[ip] = info
		} else if now.After(info.resetAt) {
			info.count = 1
			info.resetAt = now.Add(l.window)
		} else {
			if info.count >= l.rpm {
				retryAfter := int(info.resetAt.Sub(now).Seconds())
				l.mtx.Unlock()

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeJSON(w, http.StatusTooManyRequests, map[string]any{
					"success":     false,
					"message":     "Too many requests, try again later",
					"retry_after": retryAfter,
					"request_id":  GetRequestID(r.Context()),
				})
				return
			}
			info.count++
		}

		// copy before unlocking
		remaining := l.rpm - info.count
		resetUnix := info.resetAt.Unix()

		l.mtx.Unlock()

		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.rpm))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetUnix, 10))

		next.ServeHTTP(w, r)
	})
}

// Prune forgets clients whose window has closed.
func (l *RateLimiter) Prune(now time.Time) int {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	removed := 0
	for ip, info := range l.clients {
		if now.After(info.resetAt) {
			delete(l.clients, ip)
			removed++
		}
	}
	return removed
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
