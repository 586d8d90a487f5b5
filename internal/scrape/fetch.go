// Package scrape fetches third-party HTML pages for the opportunity
// providers and the job-link analyzer.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxBodyBytes = 4 << 20
)

// ErrDisallowedAddress is returned when a page resolves to a loopback,
// private, link-local or unspecified address.
var ErrDisallowedAddress = errors.New("address not allowed")

// Fetcher downloads and parses HTML pages. Requests to the same provider are
// throttled by a shared token bucket. Connections are only made to public
// addresses, checked at dial time so redirects are covered too.
type Fetcher struct {
	client       *http.Client
	limit        rate.Limit
	burst        int
	allowPrivate bool

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRate sets the per-provider request rate and burst.
func WithRate(limit rate.Limit, burst int) Option {
	return func(f *Fetcher) {
		f.limit = limit
		f.burst = burst
	}
}

// WithPrivateAddresses lets the Fetcher connect to loopback and private
// addresses. Used by tests that serve pages from httptest.
func WithPrivateAddresses() Option {
	return func(f *Fetcher) {
		f.allowPrivate = true
	}
}

// NewFetcher returns a Fetcher whose requests time out after timeout.
// By default each provider may make one request per second with a burst of two.
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		limit:    rate.Every(time.Second),
		burst:    2,
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(f)
	}

	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !f.allowPrivate {
		dialer.Control = publicOnly
		// a proxy would be dialed instead of the target
		transport.Proxy = nil
	}
	transport.DialContext = dialer.DialContext
	f.client = &http.Client{Timeout: timeout, Transport: transport}
	return f
}

// publicOnly rejects connections to addresses outside the public internet.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !IsPublicIP(ip) {
		return fmt.Errorf("%w: %s", ErrDisallowedAddress, host)
	}
	return nil
}

// sharedAddressSpace is the carrier-grade NAT range, 100.64.0.0/10.
var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// IsPublicIP reports whether ip is a globally routable unicast address.
func IsPublicIP(ip net.IP) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	case sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

func (f *Fetcher) limiter(provider string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[provider]
	if !ok {
		l = rate.NewLimiter(f.limit, f.burst)
		f.limiters[provider] = l
	}
	return l
}

// Document fetches rawURL on behalf of provider and parses it with goquery.
func (f *Fetcher) Document(ctx context.Context, provider, rawURL string) (*goquery.Document, error) {
	if err := f.limiter(provider).Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit wait: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", provider, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", provider, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: parse html: %w", provider, err)
	}
	return doc, nil
}

// Text returns the whitespace-collapsed text of the first element in sel.
func Text(sel *goquery.Selection) string {
	return Clean(sel.First().Text())
}

// Clean collapses runs of whitespace into single spaces.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
