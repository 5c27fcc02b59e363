package entity

import (
	"database/sql"
	"time"
)

type StandaloneWinner struct {
	Base

	FirstName string
	LastName  string
	UserID    sql.NullString

	Prize    string
	Amount   float64
	Position int

	DrawDate   time.Time
	WeekOfYear string `gorm:"index"`
	IsActive   bool   `gorm:"index"`

	CreatedBy sql.NullString
	UpdatedBy sql.NullString
}
