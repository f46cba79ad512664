package app

import (
	"fmt"
	"math"
	"time"
)

// relativeDay labels a note's last update by calendar day in now's location.
func relativeDay(updatedAt, now time.Time) string {
	if updatedAt.IsZero() {
		return ""
	}
	if now.IsZero() {
		now = time.Now()
	}
	updatedAt = updatedAt.In(now.Location())
	y1, m1, d1 := updatedAt.Date()
	y2, m2, d2 := now.Date()
	then := time.Date(y1, m1, d1, 0, 0, 0, 0, now.Location())
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, now.Location())
	days := int(math.Round(today.Sub(then).Hours() / 24))
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "1 day ago"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	}
	return updatedAt.Format("2006-01-02")
}
