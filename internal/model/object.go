package model

type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Prize struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type Participant struct {
	UserID   string `json:"user_id"`
	JoinedAt string `json:"joined_at"`
	IsWinner bool   `json:"is_winner"`
	Position int    `json:"position,omitempty"`
	Prize    string `json:"prize,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type Winner struct {
	UserID      string  `json:"user_id"`
	Position    int     `json:"position"`
	Prize       string  `json:"prize"`
	PrizeAmount float64 `json:"prize_amount"`
	SelectedAt  string  `json:"selected_at"`
	SelectedBy  string  `json:"selected_by,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

type Contest struct {
	ID                  string        `json:"id"`
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	BannerURL           string        `json:"banner_url,omitempty"`
	WeeklyKey           string        `json:"weekly_key,omitempty"`
	WeekNumber          int           `json:"week_number,omitempty"`
	Year                int           `json:"year,omitempty"`
	StartDate           string        `json:"start_date"`
	EndDate             string        `json:"end_date"`
	DrawDate            string        `json:"draw_date"`
	Status              string        `json:"status"`
	MaxParticipants     *int64        `json:"max_participants"`
	CurrentParticipants int           `json:"current_participants"`
	MaxWinners          int           `json:"max_winners"`
	Prizes              []Prize       `json:"prizes"`
	Participants        []Participant `json:"participants,omitempty"`
	Winners             []Winner      `json:"winners"`
	AutoDrawEnabled     bool          `json:"auto_draw_enabled"`
	DrawCompleted       bool          `json:"draw_completed"`
	DrawCompletedAt     string        `json:"draw_completed_at,omitempty"`
	CreatedBy           string        `json:"created_by,omitempty"`
	UpdatedBy           string        `json:"updated_by,omitempty"`
	CreatedAt           string        `json:"created_at"`
}

// ContestParticipant is a participant listed together with its contest.
type ContestParticipant struct {
	Participant
	ContestID    string `json:"contest_id"`
	ContestTitle string `json:"contest_title"`
}

type StandaloneWinner struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	UserID     string  `json:"user_id,omitempty"`
	Prize      string  `json:"prize"`
	Amount     float64 `json:"amount"`
	Position   int     `json:"position"`
	DrawDate   string  `json:"draw_date"`
	WeekOfYear string  `json:"week_of_year"`
	IsActive   bool    `json:"is_active"`
}

type ContestStats struct {
	TotalGains      float64 `json:"total_gains"`
	TotalPlacesSold int64   `json:"total_places_sold"`
	TotalWinners    int64   `json:"total_winners"`
	TotalContests   int64   `json:"total_contests"`
	UpdatedAt       string  `json:"updated_at"`
}

type ContestStatsMonth struct {
	Month           string  `json:"month"`
	TotalGains      float64 `json:"total_gains"`
	TotalPlacesSold int64   `json:"total_places_sold"`
	TotalWinners    int64   `json:"total_winners"`
	TotalContests   int64   `json:"total_contests"`
}

type DrawReport struct {
	Checked int `json:"checked"`
	Drawn   int `json:"drawn"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// WinnerNotification is published once per drawn winner.
type WinnerNotification struct {
	ContestID    string  `json:"contest_id"`
	ContestTitle string  `json:"contest_title"`
	UserID       string  `json:"user_id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Position     int     `json:"position"`
	Prize        string  `json:"prize"`
	PrizeAmount  float64 `json:"prize_amount"`
}
