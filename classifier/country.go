package classifier

import (
	"context"
	"net"
	"net/http"
	"strings"

	"blog-viewstats/models"

	"github.com/rs/zerolog/log"
)

// Headers set by hosting providers that already geolocated the client.
const (
	HeaderVercelCountry     = "X-Vercel-IP-Country"
	HeaderCloudflareCountry = "CF-IPCountry"
)

var privateNets = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"100.64.0.0/10",
	"fc00::/7",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return nets
}

// IsPublicIP reports whether ip is a routable address worth geolocating.
func IsPublicIP(ip string) bool {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() || parsed.IsLinkLocalUnicast() || parsed.IsLinkLocalMulticast() ||
		parsed.IsUnspecified() || parsed.IsMulticast() || parsed.IsPrivate() {
		return false
	}
	for _, n := range privateNets {
		if n.Contains(parsed) {
			return false
		}
	}
	return true
}

// Classifier resolves a request's country from trusted headers first and
// an IP geolocation lookup second.
type Classifier struct {
	geo     Geolocator
	headers []string
}

// New returns a Classifier. geo may be nil to disable IP lookups; extra
// names trusted country headers checked after the Vercel and Cloudflare ones.
func New(geo Geolocator, extra ...string) *Classifier {
	headers := []string{HeaderVercelCountry, HeaderCloudflareCountry}
	headers = append(headers, extra...)
	return &Classifier{geo: geo, headers: headers}
}

// CountryFromHeaders returns the first usable trusted header value, or "".
func (c *Classifier) CountryFromHeaders(h http.Header) string {
	for _, name := range c.headers {
		v := models.NormalizeCountry(h.Get(name))
		if v != models.UnknownCountry {
			return v
		}
	}
	return ""
}

// Country never fails: every unresolved case yields XX.
func (c *Classifier) Country(ctx context.Context, h http.Header, ip string) string {
	if code := c.CountryFromHeaders(h); code != "" {
		return code
	}
	if c.geo == nil || !IsPublicIP(ip) {
		return models.UnknownCountry
	}

	code, err := c.geo.Lookup(ctx, strings.TrimSpace(ip))
	if err != nil {
		log.Debug().Err(err).Str("ip", ip).Msg("geolocation lookup failed")
		return models.UnknownCountry
	}
	return models.NormalizeCountry(code)
}
