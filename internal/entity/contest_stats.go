package entity

import "time"

const GlobalContestStatsID = "global"

type ContestStats struct {
	ID              string `gorm:"primarykey"`
	TotalGains      float64
	TotalPlacesSold int64
	TotalWinners    int64
	TotalContests   int64
	UpdatedAt       time.Time
}

type ContestStatsMonth struct {
	// Month is in form of YYYY-MM.
	Month           string `gorm:"primarykey"`
	TotalGains      float64
	TotalPlacesSold int64
	TotalWinners    int64
	TotalContests   int64
	UpdatedAt       time.Time
}
