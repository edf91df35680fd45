package proxylist

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/football-scraper/internal/domain/proxy"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

const checkURL = "http://httpbin.test/ip"

// relay answers the check URL as a forwarding proxy would, reporting origin.
func relay(t *testing.T, origin string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.String() != checkURL {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = jsoniter.NewEncoder(w).Encode(map[string]any{"origin": origin})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func listPage(rows ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<table><thead><tr><th>IP Address</th><th>Port</th></tr></thead><tbody>`)
	for _, row := range rows {
		fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>US</td><td>elite proxy</td></tr>`, row[0], row[1])
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}

func hostPort(srv *httptest.Server) [2]string {
	host, port, _ := strings.Cut(strings.TrimPrefix(srv.URL, "http://"), ":")
	return [2]string{host, port}
}

func TestDiscover_KeepsProxiesReportingTheirOwnIP(t *testing.T) {
	t.Parallel()

	good := relay(t, "127.0.0.1")
	leaky := relay(t, "203.0.113.9")
	dead := httptest.NewServer(http.NotFoundHandler())
	deadAddr := hostPort(dead)
	dead.Close()

	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.UserAgent(), "Mozilla")
		_, _ = w.Write([]byte(listPage(hostPort(good), hostPort(leaky), deadAddr, [2]string{"2024-01-01", "12"})))
	}))
	defer source.Close()
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listPage(hostPort(good))))
	}))
	defer mirror.Close()

	d := NewDiscoverer(Config{
		Sources:  []string{source.URL, mirror.URL},
		CheckURL: checkURL,
		Workers:  4,
	})

	valid, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, []proxy.Proxy{proxy.Proxy(strings.TrimPrefix(good.URL, "http://"))}, valid)
}

func TestDiscover_NoCandidates(t *testing.T) {
	t.Parallel()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	d := NewDiscoverer(Config{Sources: []string{broken.URL}, CheckURL: checkURL})
	_, err := d.Discover(context.Background())
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
}

func TestScrape_SkipsMalformedRows(t *testing.T) {
	t.Parallel()

	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listPage(
			[2]string{"10.0.0.1", "8080"},
			[2]string{"", "3128"},
			[2]string{"proxy.example", "80"},
			[2]string{"10.0.0.2", "3128"},
		)))
	}))
	defer source.Close()

	got, err := NewDiscoverer(Config{}).Scrape(context.Background(), source.URL)
	require.NoError(t, err)
	require.Equal(t, []proxy.Proxy{"10.0.0.1:8080", "10.0.0.2:3128"}, got)
}

func TestValidate_OriginMustEqualProxyHost(t *testing.T) {
	t.Parallel()

	chained := relay(t, "127.0.0.1, 198.51.100.7")
	lookalike := relay(t, "127.0.0.10")

	candidates := []proxy.Proxy{
		proxy.Proxy(strings.TrimPrefix(chained.URL, "http://")),
		proxy.Proxy(strings.TrimPrefix(lookalike.URL, "http://")),
	}
	valid, err := NewDiscoverer(Config{CheckURL: checkURL, Workers: 2}).Validate(context.Background(), candidates)
	require.NoError(t, err)
	require.Equal(t, candidates[:1], valid)
}

func TestReportsOwnIP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		origin, host string
		want         bool
	}{
		{"1.2.3.4", "1.2.3.4", true},
		{" 1.2.3.4 , 10.0.0.1", "1.2.3.4", true},
		{"1.2.3.45", "1.2.3.4", false},
		{"10.0.0.1, 1.2.3.4", "1.2.3.4", false},
		{"", "", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, reportsOwnIP(tc.origin, tc.host), "origin %q host %q", tc.origin, tc.host)
	}
}

func TestValidate_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDiscoverer(Config{CheckURL: checkURL}).Validate(ctx, []proxy.Proxy{"10.0.0.1:8080"})
	require.ErrorIs(t, err, context.Canceled)
}
