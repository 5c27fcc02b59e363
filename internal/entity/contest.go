package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/contest-backoffice/pkg/enum"
)

type ContestStatus string

var (
	ContestStatusDraft     = enum.New(ContestStatus("draft"))
	ContestStatusActive    = enum.New(ContestStatus("active"))
	ContestStatusClosed    = enum.New(ContestStatus("closed"))
	ContestStatusCompleted = enum.New(ContestStatus("completed"))
)

type ContestPrize struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type ContestParticipant struct {
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	IsWinner bool      `json:"is_winner"`
	Position int       `json:"position,omitempty"`
	Prize    string    `json:"prize,omitempty"`
	Notes    string    `json:"notes,omitempty"`
}

type ContestWinner struct {
	UserID      string    `json:"user_id"`
	Position    int       `json:"position"`
	Prize       string    `json:"prize"`
	PrizeAmount float64   `json:"prize_amount"`
	SelectedAt  time.Time `json:"selected_at"`
	// SelectedBy is empty when the winner was drawn by the system.
	SelectedBy string `json:"selected_by,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type Contest struct {
	Base

	Title       string
	Description string
	BannerURL   string

	// WeeklyKey is set only on weekly contests, in form of YYYY-Www.
	WeeklyKey  sql.NullString `gorm:"uniqueIndex"`
	WeekNumber int
	Year       int

	StartDate time.Time
	EndDate   time.Time
	DrawDate  time.Time `gorm:"index"`

	Status ContestStatus `gorm:"index"`

	MaxParticipants     sql.NullInt64
	CurrentParticipants int
	MaxWinners          int
	Prizes              Array[ContestPrize]

	Participants Array[ContestParticipant]
	Winners      Array[ContestWinner]

	AutoDrawEnabled bool
	DrawCompleted   bool
	DrawCompletedAt sql.NullTime

	CreatedBy sql.NullString
	UpdatedBy sql.NullString

	// Version is bumped on every aggregate write.
	Version int
}
