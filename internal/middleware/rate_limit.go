package middleware

import (
	"encoding/json"
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

type rateLimiter struct {
	mtx     sync.Mutex
	rpm     int
	window  time.Duration
	clients map[string]*clientInfo
	now     func() time.Time
}

// allow возвращает остаток запросов, время сброса окна и решение
func (l *rateLimiter) allow(key string) (int, time.Time, bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	now := l.now()
	info, exists := l.clients[key]
	if !exists || now.After(info.resetAt) {
		if !exists {
			l.evictExpired(now)
		}
		info = &clientInfo{count: 1, resetAt: now.Add(l.window)}
		l.clients[key] = info
		return l.rpm - 1, info.resetAt, true
	}

	if info.count >= l.rpm {
		return 0, info.resetAt, false
	}
	info.count++
	return l.rpm - info.count, info.resetAt, true
}

// evictExpired убирает клиентов с истёкшим окном
func (l *rateLimiter) evictExpired(now time.Time) {
	for key, info := range l.clients {
		if now.After(info.resetAt) {
			delete(l.clients, key)
		}
	}
}

// RateLimit ограничивает число запросов в минуту: с авторизацией - на пользователя,
// без неё - на IP. rpm <= 0 отключает ограничение.
func RateLimit(rpm int) func(http.Handler) http.Handler {
	return rateLimit(rpm, time.Now)
}

func rateLimit(rpm int, now func() time.Time) func(http.Handler) http.Handler {
	l := &rateLimiter{
		rpm:     rpm,
		window:  time.Minute,
		clients: make(map[string]*clientInfo),
		now:     now,
	}

	return func(next http.Handler) http.Handler {
		if rpm <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, ok := l.allow(clientKey(r))
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"error":       "rate_limit_exceeded",
					"message":     "Слишком много запросов. Попробуйте позже.",
					"retry_after": int(resetAt.Sub(l.now()).Seconds()),
					"request_id":  GetRequestID(r.Context()),
				})
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if id, ok := IdentityFrom(r.Context()); ok {
		return "user:" + id.UserID
	}
	return "ip:" + getIp(r)
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
