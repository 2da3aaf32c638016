package replenishment

import (
	"math"
	"time"
)

// Epoch is the Monday that starts week 1.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// WeekStartDate returns the Monday that starts weekNumber.
func WeekStartDate(weekNumber int) time.Time {
	return Epoch.AddDate(0, 0, (weekNumber-1)*7)
}

// CurrentWeekNumber returns the week number containing now. Anything before the
// epoch is week 1.
func CurrentWeekNumber(now time.Time) int {
	u := now.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	days := day.Sub(Epoch).Hours() / 24
	week := int(math.Floor(days/7)) + 1
	if week < 1 {
		return 1
	}
	return week
}

// dateLayout formats week dates in reports.
const dateLayout = "2006-01-02"
