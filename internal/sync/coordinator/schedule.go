package coordinator

import "time"

const day = 24 * time.Hour

// nextRun returns the first instant strictly after now that is aligned to
// interval on the wall clock of loc:
//
//   - whole days run at local midnight, every interval/24h days
//   - shorter intervals are aligned to local midnight, so 1h fires at the top
//     of every hour and 15m at each quarter hour
//   - anything else runs interval after now
func nextRun(now time.Time, interval time.Duration, loc *time.Location) time.Time {
	if interval <= 0 {
		return now
	}
	if loc == nil {
		loc = time.Local
	}

	local := now.In(loc)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch {
	case interval%day == 0:
		return time.Date(y, m, d+int(interval/day), 0, 0, 0, 0, loc)
	case interval < day:
		elapsed := local.Sub(midnight)
		next := midnight.Add((elapsed/interval + 1) * interval)
		if tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, loc); !next.Before(tomorrow) {
			return tomorrow
		}
		return next
	default:
		return local.Add(interval)
	}
}
