package model

import "fmt"

// FormatRemaining renders milliseconds as H:MM:SS, or MM:SS under an hour.
// Negative values show as zero and partial seconds are dropped.
func FormatRemaining(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / secondMillis
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
