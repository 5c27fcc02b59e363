package model

import "time"

type CreateStandaloneWinnerRequest struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	UserID    string    `json:"user_id"`
	Prize     string    `json:"prize"`
	Amount    float64   `json:"amount"`
	Position  int       `json:"position"`
	DrawDate  time.Time `json:"draw_date"`
}

type CreateStandaloneWinnerResponse struct {
	Winner StandaloneWinner `json:"winner"`
}

type UpdateStandaloneWinnerRequest struct {
	ID        string     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	UserID    *string    `json:"user_id"`
	Prize     string     `json:"prize"`
	Amount    *float64   `json:"amount"`
	Position  int        `json:"position"`
	DrawDate  *time.Time `json:"draw_date"`
}

type UpdateStandaloneWinnerResponse struct {
	Winner StandaloneWinner `json:"winner"`
}

type DeleteStandaloneWinnerRequest struct {
	ID string `json:"id"`
}

type DeleteStandaloneWinnerResponse struct{}

type GetListStandaloneWinnerRequest struct {
	WeekOfYear      string `json:"week_of_year"`
	IncludeInactive bool   `json:"include_inactive"`
	Offset          int    `json:"offset"`
	Limit           int    `json:"limit"`
}

type GetListStandaloneWinnerResponse struct {
	Winners     []StandaloneWinner `json:"winners"`
	TotalAmount float64            `json:"total_amount"`
}
