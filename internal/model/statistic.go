package model

type GetContestStatsRequest struct {
	// From and To bound the monthly breakdown, in form of YYYY-MM.
	From string `json:"from"`
	To   string `json:"to"`
}

type GetContestStatsResponse struct {
	Stats  ContestStats        `json:"stats"`
	Months []ContestStatsMonth `json:"months"`
}

type UpdateContestStatsRequest struct {
	TotalGains      *float64 `json:"total_gains"`
	TotalPlacesSold *int64   `json:"total_places_sold"`
	TotalWinners    *int64   `json:"total_winners"`
	TotalContests   *int64   `json:"total_contests"`
}

type UpdateContestStatsResponse struct {
	Stats ContestStats `json:"stats"`
}
