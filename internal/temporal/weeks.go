package temporal

import (
	"errors"
	"fmt"
	"time"

	"github.com/naka-gawa/git-insights/internal/domain"
)

// MaxWeeks bounds the week windows accepted from users, a little over a century.
const MaxWeeks = 5300

// CheckWeeks rejects week counts outside [0, MaxWeeks].
func CheckWeeks(n int) error {
	if n < 0 || n > MaxWeeks {
		return fmt.Errorf("weeks must be between 0 and %d, got %d", MaxWeeks, n)
	}
	return nil
}

// WeekWindow returns the week containing now, aligned to the unix epoch
// rather than to any local calendar week: [start, start+Week-1].
func WeekWindow(now int64) (start, end int64) {
	start = now - floorMod(now, Week)
	return start, start + Week - 1
}

// Timeline counts timestamps per aligned week for the last weeks weeks,
// oldest first, the last bin being the week that contains now. Timestamps
// after the current window, or older than the first bin, are dropped.
func Timeline(timestamps []int64, weeks int, now int64) []int {
	if weeks <= 0 {
		return []int{}
	}
	counts := make([]int, weeks)
	_, end := WeekWindow(now)
	for _, t := range timestamps {
		if t > end {
			continue
		}
		bin := (end - t) / Week
		if bin < int64(weeks) {
			counts[weeks-1-int(bin)]++
		}
	}
	return counts
}

// Calendar counts timestamps on a 7 x weeks grid: rows Sunday..Saturday,
// columns aligned weeks oldest first.
func Calendar(timestamps []int64, weeks int, now int64) [7][]int {
	var grid [7][]int
	if weeks < 0 {
		weeks = 0
	}
	for r := range grid {
		grid[r] = make([]int, weeks)
	}
	if weeks == 0 {
		return grid
	}
	_, end := WeekWindow(now)
	oldest := end - int64(weeks)*Week + 1
	for _, t := range timestamps {
		if t > end || t < oldest {
			continue
		}
		col := weeks - 1 - int((end-t)/Week)
		grid[Weekday(t)][col]++
	}
	return grid
}

// FilterWeeks keeps the timestamps inside the last *weeks aligned weeks.
// A nil weeks disables the filter; zero weeks keeps nothing.
func FilterWeeks(timestamps []int64, weeks *int, now int64) []int64 {
	if weeks == nil {
		return append([]int64{}, timestamps...)
	}
	kept := []int64{}
	if *weeks <= 0 {
		return kept
	}
	_, end := WeekWindow(now)
	oldest := end - int64(*weeks)*Week + 1
	for _, t := range timestamps {
		if t >= oldest && t <= end {
			kept = append(kept, t)
		}
	}
	return kept
}

// Clock returns the current time.
type Clock func() time.Time

// Now reads clock as unix seconds. A time before the epoch means the clock
// is unusable.
func Now(clock Clock) (int64, error) {
	t := clock()
	if t.Before(time.Unix(0, 0)) {
		return 0, &domain.ClockError{Err: errors.New("system time is before the unix epoch")}
	}
	return t.Unix(), nil
}
