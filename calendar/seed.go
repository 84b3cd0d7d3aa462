/*
seed.go - Built-in Bulgarian holiday seed set

PURPOSE:
  Computes a year's official holiday set from scratch: ten fixed civil
  dates, four Orthodox-Easter-relative dates, and one compensatory
  working-day-off for every fixed holiday that lands on a weekend.

COMPENSATION RULE:
  A fixed holiday on a Saturday or Sunday produces exactly one observed
  day on the next date that is neither already a holiday nor a weekend,
  searching forward day by day. Compensation days generated earlier in
  the scan count as holidays for later searches, so back-to-back weekend
  holidays chain their observed days instead of colliding.

  Easter-relative holidays never generate compensation: Holy Saturday and
  Easter Sunday land on a weekend every year and are non-working by
  nature. The exclusion is deliberate, not an oversight.
*/
package calendar

import (
	"time"

	"github.com/warp/compliance-engine/engine"
)

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

// The ten fixed civil holidays.
var fixedHolidays = []fixedHoliday{
	{time.January, 1, "New Year's Day"},
	{time.March, 3, "Liberation Day"},
	{time.May, 1, "Labour Day"},
	{time.May, 6, "St. George's Day"},
	{time.May, 24, "Day of Bulgarian Education and Culture"},
	{time.September, 6, "Unification Day"},
	{time.September, 22, "Independence Day"},
	{time.December, 24, "Christmas Eve"},
	{time.December, 25, "Christmas Day"},
	{time.December, 26, "Second Day of Christmas"},
}

// SeedYear computes the official holiday records for a year, in date
// order: fixed dates, Easter-relative dates, then compensatory days for
// fixed dates that fell on a weekend.
func SeedYear(year int) []engine.HolidayRecord {
	var records []engine.HolidayRecord
	taken := make(map[string]bool)

	add := func(d engine.Date, name string) {
		records = append(records, engine.HolidayRecord{
			Date: d,
			Name: name,
			Type: engine.HolidayOfficial,
		})
		taken[d.ISO()] = true
	}

	var fixed []engine.Date
	for _, fh := range fixedHolidays {
		d := engine.NewDate(year, fh.month, fh.day)
		add(d, fh.name)
		fixed = append(fixed, d)
	}

	easter := OrthodoxEaster(year)
	add(easter.AddDays(-2), "Good Friday")
	add(easter.AddDays(-1), "Holy Saturday")
	add(easter, "Easter Sunday")
	add(easter.AddDays(1), "Easter Monday")

	// Compensation pass, fixed dates only.
	for i, d := range fixed {
		if !d.IsWeekend() {
			continue
		}
		observed := d.AddDays(1)
		for taken[observed.ISO()] || observed.IsWeekend() {
			observed = observed.AddDays(1)
		}
		add(observed, fixedHolidays[i].name+" (observed)")
	}

	sortRecords(records)
	return records
}
