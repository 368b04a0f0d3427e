package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration // how often idle clients are swept
	ClientTimeout     time.Duration // idle time before a client is forgotten
}

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(r *http.Request) string

// ClientIP keys by the first X-Forwarded-For hop, falling back to the peer address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// URLParamOrIP keys by a route parameter such as the driver id, so one chatty
// device cannot starve others behind the same NAT.
func URLParamOrIP(param string) KeyFunc {
	return func(r *http.Request) string {
		if v := chi.URLParam(r, param); v != "" {
			return param + ":" + v
		}
		return ClientIP(r)
	}
}

type ClientLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	config   RateLimiterConfig
	key      KeyFunc
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(conf RateLimiterConfig, key KeyFunc) *ClientLimiter {
	if key == nil {
		key = ClientIP
	}
	if conf.CleanupInterval <= 0 {
		conf.CleanupInterval = time.Minute
	}
	if conf.ClientTimeout <= 0 {
		conf.ClientTimeout = 3 * time.Minute
	}
	d := &ClientLimiter{
		visitors: make(map[string]*visitor),
		config:   conf,
		key:      key,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go d.cleanupLoop()

	return d
}

// Close stops the cleanup goroutine.
func (d *ClientLimiter) Close() {
	d.once.Do(func() {
		close(d.stop)
		<-d.done
	})
}

func (d *ClientLimiter) cleanupLoop() {
	defer close(d.done)
	ticker := time.NewTicker(d.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			d.sweep(time.Now())
		}
	}
}

func (d *ClientLimiter) sweep(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range d.visitors {
		if now.Sub(v.lastSeen) > d.config.ClientTimeout {
			delete(d.visitors, k)
		}
	}
}

func (d *ClientLimiter) Handler(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := d.key(r)
			if !d.getVisitor(key).Allow() {
				log.Warn(r.Context(), "Rate limit exceeded",
					logger.String("client", key),
					logger.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests - Slow down", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (d *ClientLimiter) getVisitor(key string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, exists := d.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(d.config.RequestsPerSecond), d.config.Burst)
		d.visitors[key] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (d *ClientLimiter) clients() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.visitors)
}
