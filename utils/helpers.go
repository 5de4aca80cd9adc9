package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TruncateString shortens s to maxLength runes with an ellipsis.
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "..."
}

func StringSliceContains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// TimeAgo formats a timestamp as a relative duration string for feed views.
func TimeAgo(t time.Time) string {
	seconds := int64(time.Since(t).Seconds())

	switch {
	case seconds >= 2*31536000:
		return fmt.Sprintf("%d years ago", seconds/31536000)
	case seconds >= 2*2592000:
		return fmt.Sprintf("%d months ago", seconds/2592000)
	case seconds >= 2*86400:
		return fmt.Sprintf("%d days ago", seconds/86400)
	case seconds >= 2*3600:
		return fmt.Sprintf("%d hours ago", seconds/3600)
	case seconds >= 2*60:
		return fmt.Sprintf("%d min ago", seconds/60)
	default:
		if seconds < 0 {
			seconds = 0
		}
		return fmt.Sprintf("%d sec ago", seconds)
	}
}

// Capitalize upper-cases the first letter only.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func RoundToDecimalPlaces(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
