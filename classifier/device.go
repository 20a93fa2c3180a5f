package classifier

import (
	"regexp"
	"strings"

	"blog-viewstats/models"
)

var (
	botPattern    = regexp.MustCompile(`(?i)bot|crawler|spider|slurp|headless`)
	tabletPattern = regexp.MustCompile(`(?i)ipad|tablet|playbook|silk|kindle`)
	mobilePattern = regexp.MustCompile(`(?i)mobile|android|iphone|ipod|webos|blackberry|opera mini|iemobile|windows phone`)
)

// Device maps a user agent to a device category. The first matching class
// wins, in the order bot, tablet, mobile; any other non-empty agent is a
// desktop and an empty one is unknown.
func Device(userAgent string) models.DeviceCategory {
	ua := strings.TrimSpace(userAgent)
	switch {
	case ua == "":
		return models.DeviceUnknown
	case botPattern.MatchString(ua):
		return models.DeviceBot
	case tabletPattern.MatchString(ua):
		return models.DeviceTablet
	case mobilePattern.MatchString(ua):
		return models.DeviceMobile
	default:
		return models.DeviceDesktop
	}
}
