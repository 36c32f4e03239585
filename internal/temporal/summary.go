package temporal

import (
	"github.com/montanaflynn/stats"
)

// Summary describes the distribution of counts across bins.
type Summary struct {
	Total  int     `json:"total"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// Summarize reports total, max, mean, median and the nearest-rank 90th
// percentile of counts.
// Empty input yields a zero Summary.
func Summarize(counts []int) Summary {
	var s Summary
	if len(counts) == 0 {
		return s
	}
	for _, c := range counts {
		s.Total += c
		if c > s.Max {
			s.Max = c
		}
	}
	data := stats.LoadRawData(counts)
	s.Mean, _ = stats.Mean(data)
	s.Median, _ = stats.Median(data)
	s.P90, _ = stats.PercentileNearestRank(data, 90)
	return s
}
