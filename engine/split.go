/*
split.go - Midnight-crossing shift splitting

PURPOSE:
  Converts a shift's HH:MM start/end anchored at a calendar date into one
  or more same-day minute intervals ("segments"). A shift whose end is at
  or before its start crosses midnight, so 19:00-07:00 anchored on Monday
  becomes a Monday segment [19:00, 24:00) and a Tuesday segment
  [00:00, 07:00).

INVARIANT:
  sum(segment.Duration) == SplitResult.Duration, always.

TIMELINE CONVENTION:
  Absolute minutes are measured from the anchor date's midnight, so the
  shift occupies [StartMinute, EndMinute) where EndMinute may exceed 1440.
  Segments are cut at every 1440 boundary.
*/
package engine

// Segment is a same-day slice of a shift. StartMinute/EndMinute are
// minutes-of-day local to Date, with EndMinute in (0, 1440].
type Segment struct {
	Date        Date
	StartMinute int
	EndMinute   int
	Duration    int
}

// SplitResult is the splitter output. Valid is false when either clock
// string was malformed; all other fields are then zero.
type SplitResult struct {
	Valid           bool
	CrossesMidnight bool

	// Absolute interval anchored at Date's midnight.
	StartMinute int
	EndMinute   int
	Duration    int

	Segments []Segment
}

// SplitShift anchors the [start, end) clock interval at day and splits it
// into per-calendar-day segments.
func SplitShift(day Date, startHHMM, endHHMM string) SplitResult {
	start, okS := ParseClock(startHHMM)
	end, okE := ParseClock(endHHMM)
	if !okS || !okE {
		return SplitResult{}
	}

	crosses := false
	if end <= start {
		end += MinutesPerDay
		crosses = true
	}

	res := SplitResult{
		Valid:           true,
		CrossesMidnight: crosses,
		StartMinute:     start,
		EndMinute:       end,
		Duration:        end - start,
	}

	for cur := start; cur < end; {
		dayIndex := cur / MinutesPerDay
		boundary := (dayIndex + 1) * MinutesPerDay
		segEnd := boundary
		if end < segEnd {
			segEnd = end
		}
		res.Segments = append(res.Segments, Segment{
			Date:        day.AddDays(dayIndex),
			StartMinute: cur - dayIndex*MinutesPerDay,
			EndMinute:   segEnd - dayIndex*MinutesPerDay,
			Duration:    segEnd - cur,
		})
		cur = segEnd
	}

	return res
}
