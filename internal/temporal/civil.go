// Package temporal bins commit timestamps into calendar-exact histograms,
// heatmaps and week-aligned timelines. All timestamps are unix seconds and
// every function here is pure and UTC-based.
package temporal

const (
	Hour int64 = 3600
	Day        = 24 * Hour
	Week       = 7 * Day
)

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}

// DayNumber is the number of whole days since 1970-01-01.
func DayNumber(ts int64) int64 {
	return floorDiv(ts, Day)
}

// Weekday returns 0 for Sunday through 6 for Saturday. Day 0 was a Thursday.
func Weekday(ts int64) int {
	return int(floorMod(DayNumber(ts)+4, 7))
}

// HourOfDay returns the UTC hour, 0-23.
func HourOfDay(ts int64) int {
	return int(floorMod(floorDiv(ts, Hour), 24))
}

// CivilFromDays converts a day count relative to 1970-01-01 into a proleptic
// Gregorian (year, month, day), using integer arithmetic only.
// See https://howardhinnant.github.io/date_algorithms.html#civil_from_days.
func CivilFromDays(z int64) (year int64, month, day int) {
	z += 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097                                  // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365 // [0, 399]
	year = yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100) // [0, 365]
	mp := (5*doy + 2) / 153                  // [0, 11], March based
	day = int(doy - (153*mp+2)/5 + 1)
	month = int((mp+2)%12 + 1)
	if mp >= 10 {
		year++
	}
	return year, month, day
}

// YMD returns the UTC calendar date of ts.
func YMD(ts int64) (year int64, month, day int) {
	return CivilFromDays(DayNumber(ts))
}
