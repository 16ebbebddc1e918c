package dto

import "bidlens.app/resolver/internal/history"

type HistoryStatsResponse struct {
	NAICS    string   `json:"naics"`
	Count    int      `json:"count"`
	Mean     float64  `json:"mean"`
	Variance float64  `json:"variance"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Sources  []string `json:"sources"`
	From     string   `json:"from"`
	To       string   `json:"to"`
}

func ToHistoryStatsResponse(stats *history.Stats, from, to string) *HistoryStatsResponse {
	return &HistoryStatsResponse{
		NAICS:    stats.NAICS,
		Count:    stats.Count,
		Mean:     stats.Mean,
		Variance: stats.Variance,
		Min:      stats.Min,
		Max:      stats.Max,
		Sources:  stats.Sources,
		From:     from,
		To:       to,
	}
}
