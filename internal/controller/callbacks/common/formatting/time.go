package formatting

import (
	"fmt"
	"time"
)

const (
	dateLayout     = "02.01.2006"
	clockLayout    = "15:04"
	dateTimeLayout = dateLayout + " " + clockLayout
)

var weekdayShort = [...]string{
	time.Sunday:    "Вс",
	time.Monday:    "Пн",
	time.Tuesday:   "Вт",
	time.Wednesday: "Ср",
	time.Thursday:  "Чт",
	time.Friday:    "Пт",
	time.Saturday:  "Сб",
}

func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// FormatRange prints a slot range, collapsing the date when both ends share a day.
func FormatRange(start, end time.Time) string {
	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return fmt.Sprintf("%s %s, %s-%s",
			start.Format(dateLayout), weekdayShort[start.Weekday()], start.Format(clockLayout), end.Format(clockLayout))
	}
	return fmt.Sprintf("%s - %s", FormatDateTime(start), FormatDateTime(end))
}

// FormatDuration печатает длительность в часах и минутах: "1 ч 30 мин"
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	hours, mins := int(d/time.Hour), int((d%time.Hour)/time.Minute)
	switch {
	case hours == 0:
		return fmt.Sprintf("%d мин", mins)
	case mins == 0:
		return fmt.Sprintf("%d ч", hours)
	default:
		return fmt.Sprintf("%d ч %d мин", hours, mins)
	}
}
