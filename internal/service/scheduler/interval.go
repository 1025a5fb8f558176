package scheduler

import (
	"fmt"
	"time"
)

// FormatInterval humanizes the gap between now and a projected due time,
// matching the granularity users expect on rating buttons: "<1m", "10m",
// "3h", "2d", "1.5mo", "1.2y". Intervals are floored, not rounded.
func FormatInterval(d time.Duration) string {
	minutes := int(d.Minutes())
	hours := int(d.Hours())
	days := hours / 24

	switch {
	case days >= 365:
		return fmt.Sprintf("%.1fy", float64(days)/365)
	case days >= 30:
		return fmt.Sprintf("%.1fmo", float64(days)/30)
	case days >= 1:
		return fmt.Sprintf("%dd", days)
	case hours >= 1:
		return fmt.Sprintf("%dh", hours)
	case minutes >= 1:
		return fmt.Sprintf("%dm", minutes)
	default:
		return "<1m"
	}
}
