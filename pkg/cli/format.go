package cli

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration as a short human-readable string,
// scaled to the magnitude of a voice session.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		mins := int(d.Minutes())
		return fmt.Sprintf("%dm%.1fs", mins, d.Seconds()-float64(mins*60))
	default:
		hours := int(d.Hours())
		rest := d - time.Duration(hours)*time.Hour
		return fmt.Sprintf("%dh%dm", hours, int(rest.Minutes()))
	}
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	units := [...]string{"KB", "MB", "GB", "TB"}
	v := float64(n)
	i := -1
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}
