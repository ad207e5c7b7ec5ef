package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var isoDuration = regexp.MustCompile(`(?i)^P(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// parseMinutes reads an ISO-8601 duration ("PT1H30M", "P0DT45M") or a bare
// number of minutes. The second result is false when nothing usable was found.
func parseMinutes(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return positiveMinutes(n)
	}

	m := isoDuration.FindStringSubmatch(s)
	if m == nil || strings.EqualFold(s, "P") || strings.EqualFold(s, "PT") {
		return 0, false
	}
	total := part(m[1])*24*60 + part(m[2])*60 + part(m[3]) + part(m[4])/60
	return positiveMinutes(total)
}

func part(s string) float64 {
	if s == "" {
		return 0
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func positiveMinutes(v float64) (int, bool) {
	n := int(math.Round(v))
	if n <= 0 {
		return 0, false
	}
	return n, true
}
