package model

import "time"

type CreateContestRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	DrawDate        time.Time `json:"draw_date"`
	MaxParticipants *int64    `json:"max_participants"`
	MaxWinners      int       `json:"max_winners"`
	Prizes          []Prize   `json:"prizes"`
	AutoDrawEnabled bool      `json:"auto_draw_enabled"`
	Activate        bool      `json:"activate"`
}

type CreateContestResponse struct {
	Contest Contest `json:"contest"`
}

type GetContestRequest struct {
	ID string `json:"id"`
}

type GetContestResponse struct {
	Contest Contest `json:"contest"`
}

type GetListContestRequest struct {
	Status string `json:"status"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetListContestResponse struct {
	Contests []Contest `json:"contests"`
	Total    int64     `json:"total"`
}

type UpdateContestRequest struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	MaxParticipants *int64 `json:"max_participants"`
	AutoDrawEnabled *bool  `json:"auto_draw_enabled"`
	Status          string `json:"status"`
}

type UpdateContestResponse struct {
	Contest Contest `json:"contest"`
}

type AddParticipantRequest struct {
	ContestID string `json:"contest_id"`
	UserID    string `json:"user_id"`
}

type AddParticipantResponse struct {
	Added   bool    `json:"added"`
	Contest Contest `json:"contest"`
}

type RemoveParticipantRequest struct {
	ContestID string `json:"contest_id"`
	UserID    string `json:"user_id"`
}

type RemoveParticipantResponse struct {
	Removed bool    `json:"removed"`
	Contest Contest `json:"contest"`
}

type GetListParticipantRequest struct {
	ContestID string `json:"contest_id"`
	Offset    int    `json:"offset"`
	Limit     int    `json:"limit"`
}

type GetListParticipantResponse struct {
	Participants []ContestParticipant `json:"participants"`
}

type SelectWinnerRequest struct {
	ContestID   string   `json:"contest_id"`
	UserID      string   `json:"user_id"`
	Position    int      `json:"position"`
	Prize       string   `json:"prize"`
	PrizeAmount *float64 `json:"prize_amount"`
	Notes       string   `json:"notes"`
}

type SelectWinnerResponse struct {
	Winner  Winner  `json:"winner"`
	Contest Contest `json:"contest"`
}

type RemoveWinnerRequest struct {
	ContestID string `json:"contest_id"`
	UserID    string `json:"user_id"`
}

type RemoveWinnerResponse struct {
	Removed bool    `json:"removed"`
	Contest Contest `json:"contest"`
}

type SelectMultipleWinnersRequest struct {
	ContestID string   `json:"contest_id"`
	UserIDs   []string `json:"user_ids"`
}

type SelectMultipleWinnersResponse struct {
	Contest Contest `json:"contest"`
}

type UploadContestBannerRequest struct{}

type UploadContestBannerResponse struct {
	URL string `json:"url"`
}

type CreateWeeklyContestRequest struct{}

type CreateWeeklyContestResponse struct {
	Contest Contest `json:"contest"`
}

type GetCurrentWeeklyContestRequest struct{}

type GetCurrentWeeklyContestResponse struct {
	WeekKey string   `json:"week_key"`
	Contest *Contest `json:"contest"`
}

type ForceAutoDrawRequest struct{}

type ForceAutoDrawResponse struct {
	Report DrawReport `json:"report"`
}
