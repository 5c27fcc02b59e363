package model

import (
	"database/sql"
	"time"

	"github.com/questx-lab/contest-backoffice/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(DefaultTimeLayout)
}

func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}

	return formatTime(t.Time)
}

func ConvertParticipant(p entity.ContestParticipant) Participant {
	return Participant{
		UserID:   p.UserID,
		JoinedAt: formatTime(p.JoinedAt),
		IsWinner: p.IsWinner,
		Position: p.Position,
		Prize:    p.Prize,
		Notes:    p.Notes,
	}
}

func ConvertWinner(w entity.ContestWinner) Winner {
	return Winner{
		UserID:      w.UserID,
		Position:    w.Position,
		Prize:       w.Prize,
		PrizeAmount: w.PrizeAmount,
		SelectedAt:  formatTime(w.SelectedAt),
		SelectedBy:  w.SelectedBy,
		Notes:       w.Notes,
	}
}

func ConvertContest(c *entity.Contest, includeParticipants bool) Contest {
	if c == nil {
		return Contest{}
	}

	result := Contest{
		ID:                  c.ID,
		Title:               c.Title,
		Description:         c.Description,
		BannerURL:           c.BannerURL,
		WeeklyKey:           c.WeeklyKey.String,
		WeekNumber:          c.WeekNumber,
		Year:                c.Year,
		StartDate:           formatTime(c.StartDate),
		EndDate:             formatTime(c.EndDate),
		DrawDate:            formatTime(c.DrawDate),
		Status:              string(c.Status),
		CurrentParticipants: c.CurrentParticipants,
		MaxWinners:          c.MaxWinners,
		Prizes:              []Prize{},
		Winners:             []Winner{},
		AutoDrawEnabled:     c.AutoDrawEnabled,
		DrawCompleted:       c.DrawCompleted,
		DrawCompletedAt:     formatNullTime(c.DrawCompletedAt),
		CreatedBy:           c.CreatedBy.String,
		UpdatedBy:           c.UpdatedBy.String,
		CreatedAt:           formatTime(c.CreatedAt),
	}

	if c.MaxParticipants.Valid {
		max := c.MaxParticipants.Int64
		result.MaxParticipants = &max
	}

	for _, p := range c.Prizes {
		result.Prizes = append(result.Prizes, Prize{Label: p.Label, Amount: p.Amount})
	}

	for _, w := range c.Winners {
		result.Winners = append(result.Winners, ConvertWinner(w))
	}

	if includeParticipants {
		result.Participants = []Participant{}
		for _, p := range c.Participants {
			result.Participants = append(result.Participants, ConvertParticipant(p))
		}
	}

	return result
}

func ConvertStandaloneWinner(w *entity.StandaloneWinner) StandaloneWinner {
	if w == nil {
		return StandaloneWinner{}
	}

	return StandaloneWinner{
		ID:         w.ID,
		FirstName:  w.FirstName,
		LastName:   w.LastName,
		UserID:     w.UserID.String,
		Prize:      w.Prize,
		Amount:     w.Amount,
		Position:   w.Position,
		DrawDate:   formatTime(w.DrawDate),
		WeekOfYear: w.WeekOfYear,
		IsActive:   w.IsActive,
	}
}

func ConvertContestStats(s *entity.ContestStats) ContestStats {
	if s == nil {
		return ContestStats{}
	}

	return ContestStats{
		TotalGains:      s.TotalGains,
		TotalPlacesSold: s.TotalPlacesSold,
		TotalWinners:    s.TotalWinners,
		TotalContests:   s.TotalContests,
		UpdatedAt:       formatTime(s.UpdatedAt),
	}
}

func ConvertContestStatsMonth(s entity.ContestStatsMonth) ContestStatsMonth {
	return ContestStatsMonth{
		Month:           s.Month,
		TotalGains:      s.TotalGains,
		TotalPlacesSold: s.TotalPlacesSold,
		TotalWinners:    s.TotalWinners,
		TotalContests:   s.TotalContests,
	}
}
