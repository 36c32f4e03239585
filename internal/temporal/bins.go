package temporal

import (
	"strconv"
	"strings"
)

// HourHistogram counts timestamps per UTC hour of day.
func HourHistogram(timestamps []int64) [24]int {
	var bins [24]int
	for _, t := range timestamps {
		bins[HourOfDay(t)]++
	}
	return bins
}

// WeekdayHistogram counts timestamps per weekday, Sunday first.
func WeekdayHistogram(timestamps []int64) [7]int {
	var bins [7]int
	for _, t := range timestamps {
		bins[Weekday(t)]++
	}
	return bins
}

// DayOfMonthHistogram counts timestamps per calendar day of month (index 0 is the 1st).
func DayOfMonthHistogram(timestamps []int64) [31]int {
	var bins [31]int
	for _, t := range timestamps {
		_, _, d := YMD(t)
		bins[d-1]++
	}
	return bins
}

// WeekdayByHour is a 7x24 heatmap, rows Sunday..Saturday.
func WeekdayByHour(timestamps []int64) [7][24]int {
	var grid [7][24]int
	for _, t := range timestamps {
		grid[Weekday(t)][HourOfDay(t)]++
	}
	return grid
}

// DayOfMonthByHour is a 31x24 heatmap, rows day 1..31.
func DayOfMonthByHour(timestamps []int64) [31][24]int {
	var grid [31][24]int
	for _, t := range timestamps {
		_, _, d := YMD(t)
		grid[d-1][HourOfDay(t)]++
	}
	return grid
}

// ParseTimestamps reads the leading unix-seconds field of every commit-log
// line. Lines that do not start with an integer are skipped.
func ParseTimestamps(logText string) []int64 {
	ts := []int64{}
	for _, line := range strings.Split(logText, "\n") {
		field, _, _ := strings.Cut(strings.TrimSpace(line), "\t")
		v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			continue
		}
		ts = append(ts, v)
	}
	return ts
}
