package validation

import (
	"fmt"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"syscall"

	apperrors "github.com/recipebox/larder/internal/errors"
)

var blockedHostnames = map[string]struct{}{
	"localhost": {},
	"0.0.0.0":   {},
	"127.0.0.1": {},
	"::1":       {},
}

// Ranges that are neither private nor loopback in netip's terms but must not
// be reachable from a page fetch either.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("100::/64"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// Hosts like "2130706433" or "0x7f.1" that some resolvers read as IPv4.
var numericHost = regexp.MustCompile(`^(0x[0-9a-f]+|[0-9]+)(\.(0x[0-9a-f]+|[0-9]+))*$`)

// ValidateURL rejects anything but a public http(s) address. It only looks
// at the URL text and never touches the network. The returned error is an
// INVALID_URL AppError.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, apperrors.NewInvalidURLError(fmt.Sprintf("could not parse %q", raw), "URL_PARSE")
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, apperrors.NewInvalidURLError("only http and https URLs are allowed", "URL_SCHEME")
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return nil, apperrors.NewInvalidURLError("URL must include a hostname", "URL_HOST_MISSING")
	}

	if _, blocked := blockedHostnames[host]; blocked || strings.HasSuffix(host, ".localhost") {
		return nil, apperrors.NewInvalidURLError("requests to localhost are not allowed", "URL_LOCALHOST")
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if IsBlockedAddr(addr) {
			return nil, apperrors.NewInvalidURLError("requests to private or local IP addresses are not allowed", "URL_PRIVATE_ADDRESS")
		}
	} else if numericHost.MatchString(host) {
		return nil, apperrors.NewInvalidURLError("numeric hostnames must be dotted-quad addresses", "URL_NUMERIC_HOST")
	}

	u.Scheme = scheme
	return u, nil
}

// IsBlockedAddr reports whether addr is private, loopback, link-local,
// multicast, unspecified or otherwise reserved.
func IsBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap().WithZone("")
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() || addr.IsMulticast() {
		return true
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// DialControl is a net.Dialer Control hook that refuses connections to
// blocked addresses after DNS resolution. It closes the gap between the
// lexical check in ValidateURL and what a hostname actually resolves to.
// Refusals are INVALID_URL AppErrors.
func DialControl(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return apperrors.NewInvalidURLError(fmt.Sprintf("refusing dial to unparseable address %q", address), "URL_DIAL_ADDRESS")
	}
	if IsBlockedAddr(ap.Addr()) {
		return apperrors.NewInvalidURLError(fmt.Sprintf("host resolved to blocked address %s", ap.Addr()), "URL_PRIVATE_ADDRESS")
	}
	return nil
}
