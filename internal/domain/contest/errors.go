package contest

import "github.com/questx-lab/contest-backoffice/pkg/errorx"

var (
	ErrContestNotOpen         = errorx.New(errorx.Unavailable, "Contest is not open for enrollment")
	ErrContestNotFinished     = errorx.New(errorx.Unavailable, "Contest has not finished yet")
	ErrNotAParticipant        = errorx.New(errorx.BadRequest, "User is not a participant of the contest")
	ErrInvalidPosition        = errorx.New(errorx.BadRequest, "Winner position is out of range")
	ErrTooManyWinners         = errorx.New(errorx.BadRequest, "Too many winners")
	ErrDuplicateWinner        = errorx.New(errorx.BadRequest, "A user cannot win twice in the same contest")
	ErrInvalidSchedule        = errorx.New(errorx.BadRequest, "Invalid contest schedule")
	ErrPositionTaken          = errorx.New(errorx.Conflict, "Position is already taken")
	ErrAlreadyWinner          = errorx.New(errorx.Conflict, "User is already a winner of the contest")
	ErrInvalidTransition      = errorx.New(errorx.Conflict, "Invalid contest status transition")
	ErrDuplicateWeeklyContest = errorx.New(errorx.Conflict, "Weekly contest already exists")
	ErrDrawAlreadyCompleted   = errorx.New(errorx.Conflict, "Draw is already completed")
)
