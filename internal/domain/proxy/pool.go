// Package proxy holds the pool of validated public proxies shared by the
// browser session and the HTTP fetcher.
package proxy

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
)

var ErrPoolExhausted = errors.New("proxy pool exhausted")

// Proxy is an "ip:port" address.
type Proxy string

func (p Proxy) Host() string {
	host, _, _ := strings.Cut(string(p), ":")
	return host
}

// Valid reports whether p looks like an IPv4 "ip:port" pair.
func (p Proxy) Valid() bool {
	s := string(p)
	if strings.Contains(s, "-") {
		return false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[1] == "" {
		return false
	}
	return len(strings.Split(parts[0], ".")) == 4
}

// Pool hands out random proxies and forgets the ones reported as failing.
type Pool struct {
	mu      sync.Mutex
	proxies []Proxy
	rand    func(n int) int
}

func NewPool(proxies []Proxy) *Pool {
	seen := make(map[Proxy]struct{}, len(proxies))
	out := make([]Proxy, 0, len(proxies))
	for _, p := range proxies {
		if _, ok := seen[p]; ok || !p.Valid() {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return &Pool{proxies: out, rand: rand.IntN}
}

// Next returns a random live proxy.
func (p *Pool) Next() (Proxy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.proxies) == 0 {
		return "", ErrPoolExhausted
	}
	return p.proxies[p.rand(len(p.proxies))], nil
}

// Invalidate removes proxy from the pool. Unknown proxies are ignored.
func (p *Pool) Invalidate(proxy Proxy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, candidate := range p.proxies {
		if candidate == proxy {
			p.proxies = append(p.proxies[:i], p.proxies[i+1:]...)
			return
		}
	}
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

func (p *Pool) List() []Proxy {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Proxy(nil), p.proxies...)
}
