package classifier

import (
	"testing"

	"blog-viewstats/models"

	"github.com/stretchr/testify/assert"
)

func TestDevice(t *testing.T) {
	cases := []struct {
		name string
		ua   string
		want models.DeviceCategory
	}{
		{"empty", "", models.DeviceUnknown},
		{"whitespace", "   ", models.DeviceUnknown},
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", models.DeviceBot},
		{"headless chrome", "Mozilla/5.0 (X11; Linux x86_64) HeadlessChrome/120.0", models.DeviceBot},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148", models.DeviceMobile},
		{"android phone", "Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile Safari/537.36", models.DeviceMobile},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) Mobile/15E148", models.DeviceTablet},
		{"kindle", "Mozilla/5.0 (Linux; U; Android 4.0.3; Kindle Fire) Silk/3.4", models.DeviceTablet},
		{"mac", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Safari/605.1.15", models.DeviceDesktop},
		{"curl", "curl/8.4.0", models.DeviceDesktop},
		{"bot wins over mobile", "Mozilla/5.0 (iPhone) Mobile Googlebot/2.1", models.DeviceBot},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Device(tc.ua))
		})
	}
}
