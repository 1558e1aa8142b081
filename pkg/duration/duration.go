// Package duration turns schema.org ISO-8601 durations into readable phrases.
package duration

import (
	"regexp"
	"strconv"
)

// NotSpecified is returned for durations that carry neither hours nor minutes.
const NotSpecified = "Not specified"

var isoPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?`)

// Humanize converts values like "PT1H30M" into "1 hours 30 minutes".
// Input that does not start with "PT" is returned unchanged. Seconds and
// anything after the minutes component are ignored.
func Humanize(s string) string {
	m := isoPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}

	hours := atoi(m[1])
	minutes := atoi(m[2])

	switch {
	case hours > 0 && minutes > 0:
		return strconv.Itoa(hours) + " hours " + strconv.Itoa(minutes) + " minutes"
	case hours > 0:
		return strconv.Itoa(hours) + " hours"
	case minutes > 0:
		return strconv.Itoa(minutes) + " minutes"
	default:
		return NotSpecified
	}
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
