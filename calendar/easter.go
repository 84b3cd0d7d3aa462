package calendar

import (
	"time"

	"github.com/warp/compliance-engine/engine"
)

// OrthodoxEaster returns the Orthodox Easter Sunday for a year.
//
// The date is computed on the Julian calendar with the Meeus algorithm,
// then shifted 13 days to the Gregorian calendar. The 13-day offset holds
// for 1900-2099, which covers every year this engine will ever schedule.
func OrthodoxEaster(year int) engine.Date {
	a := year % 4
	b := year % 7
	c := year % 19

	d := (19*c + 15) % 30
	e := (2*a + 4*b - d + 34) % 7

	month := (d + e + 114) / 31
	day := (d+e+114)%31 + 1

	julian := engine.NewDate(year, time.Month(month), day)
	return julian.AddDays(13)
}
