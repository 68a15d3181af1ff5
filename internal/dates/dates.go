// Package dates builds the Sunday-to-Thursday day grid for a plan week,
// including Umm al-Qura Hijri date strings for exports.
package dates

import (
	"fmt"
	"time"

	"github.com/hablullah/go-hijri"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

// DayInfo describes one schedulable weekday within a plan week.
type DayInfo struct {
	Weekday   int       `json:"weekday"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	HijriDate string    `json:"hijri_date"`
}

// WeekDays expands a week's start Sunday into the five weekday entries.
func WeekDays(startSunday time.Time) []DayInfo {
	days := make([]DayInfo, 0, models.WeekdayCount)
	for i := 0; i < models.WeekdayCount; i++ {
		d := startSunday.AddDate(0, 0, i)
		days = append(days, DayInfo{
			Weekday:   i,
			Name:      models.WeekdayNames[i],
			Date:      d,
			HijriDate: HijriString(d),
		})
	}
	return days
}

// HijriString formats a Gregorian date as an Umm al-Qura calendar string
// ("1447/03/01"). Dates outside the Umm al-Qura tables fall back to empty.
func HijriString(t time.Time) string {
	h, err := hijri.CreateUmmAlQuraDate(t)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%04d/%02d/%02d", h.Year, h.Month, h.Day)
}

// IsSunday reports whether the date falls on a Sunday; plan weeks must start
// on one.
func IsSunday(t time.Time) bool {
	return t.Weekday() == time.Sunday
}
