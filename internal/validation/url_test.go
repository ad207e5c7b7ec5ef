package validation

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/recipebox/larder/internal/errors"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantCode string
	}{
		{"public https", "https://www.allrecipes.com/recipe/123/pancakes/", ""},
		{"public http with port", "http://example.com:8080/r", ""},
		{"uppercase scheme", "HTTPS://example.com/r", ""},
		{"public ip", "http://93.184.216.34/recipe", ""},
		{"ftp scheme", "ftp://example.com/file", "URL_SCHEME"},
		{"file scheme", "file:///etc/passwd", "URL_SCHEME"},
		{"javascript scheme", "javascript:alert(1)", "URL_SCHEME"},
		{"no scheme", "example.com/recipe", "URL_SCHEME"},
		{"missing host", "http:///recipe", "URL_HOST_MISSING"},
		{"localhost", "http://localhost/admin", "URL_LOCALHOST"},
		{"localhost uppercase", "http://LOCALHOST:3000", "URL_LOCALHOST"},
		{"localhost subdomain", "http://api.localhost/", "URL_LOCALHOST"},
		{"loopback v4", "http://127.0.0.1/", "URL_LOCALHOST"},
		{"loopback v4 other", "http://127.0.0.2:8080/", "URL_PRIVATE_ADDRESS"},
		{"loopback v6", "http://[::1]/", "URL_LOCALHOST"},
		{"unspecified", "http://0.0.0.0/", "URL_LOCALHOST"},
		{"private 10/8", "http://10.0.0.5/", "URL_PRIVATE_ADDRESS"},
		{"private 192.168", "https://192.168.1.1/router", "URL_PRIVATE_ADDRESS"},
		{"private 172.16", "http://172.16.0.1/", "URL_PRIVATE_ADDRESS"},
		{"link local metadata", "http://169.254.169.254/latest/meta-data", "URL_PRIVATE_ADDRESS"},
		{"reserved class e", "http://240.0.0.1/", "URL_PRIVATE_ADDRESS"},
		{"carrier grade nat", "http://100.64.1.1/", "URL_PRIVATE_ADDRESS"},
		{"unique local v6", "http://[fd00::1]/", "URL_PRIVATE_ADDRESS"},
		{"mapped loopback v6", "http://[::ffff:127.0.0.1]/", "URL_PRIVATE_ADDRESS"},
		{"decimal ip", "http://2130706433/", "URL_NUMERIC_HOST"},
		{"hex ip", "http://0x7f.0x0.0x0.0x1/", "URL_NUMERIC_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ValidateURL(tt.url)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Contains(t, []string{"http", "https"}, u.Scheme)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidURL))
			appErr, _ := apperrors.As(err)
			assert.Equal(t, tt.wantCode, appErr.ErrorCode)
			assert.Contains(t, err.Error(), "Invalid URL: ")
		})
	}
}

func TestIsBlockedAddr(t *testing.T) {
	assert.True(t, IsBlockedAddr(netip.MustParseAddr("127.0.0.1")))
	assert.True(t, IsBlockedAddr(netip.MustParseAddr("fe80::1")))
	assert.True(t, IsBlockedAddr(netip.MustParseAddr("224.0.0.1")))
	assert.True(t, IsBlockedAddr(netip.MustParseAddr("255.255.255.255")))
	assert.False(t, IsBlockedAddr(netip.MustParseAddr("8.8.8.8")))
	assert.False(t, IsBlockedAddr(netip.MustParseAddr("2606:4700:4700::1111")))
}

func TestDialControl(t *testing.T) {
	assert.Error(t, DialControl("tcp4", "10.1.2.3:443", nil))
	assert.Error(t, DialControl("tcp6", "[::1]:80", nil))
	assert.Error(t, DialControl("tcp", "not-an-address", nil))
	assert.NoError(t, DialControl("tcp4", "93.184.216.34:443", nil))

	err := DialControl("tcp4", "127.0.0.1:6379", nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidURL))
}
