package content

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out fetches both globally and per host.
type Pacer struct {
	global *rate.Limiter
	every  time.Duration

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// NewPacer allows one fetch per delay overall and one per delay per host.
// A non-positive delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	p := &Pacer{every: delay, hosts: make(map[string]*rate.Limiter)}
	if delay > 0 {
		p.global = rate.NewLimiter(rate.Every(delay), 1)
	}
	return p
}

// Wait blocks until a fetch of rawURL may start.
func (p *Pacer) Wait(ctx context.Context, rawURL string) error {
	if p == nil || p.global == nil {
		return ctx.Err()
	}
	if err := p.hostLimiter(rawURL).Wait(ctx); err != nil {
		return err
	}
	return p.global.Wait(ctx)
}

func (p *Pacer) hostLimiter(rawURL string) *rate.Limiter {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = strings.ToLower(u.Hostname())
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.hosts[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(p.every), 1)
		p.hosts[host] = l
	}
	return l
}
