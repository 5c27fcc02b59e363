// Package contest holds the invariants of the contest aggregate. Functions
// here only mutate the in-memory entity, persisting it is up to the caller.
package contest

import (
	"sort"
	"time"

	"github.com/questx-lab/contest-backoffice/internal/domain/ranking"
	"github.com/questx-lab/contest-backoffice/internal/entity"
	"golang.org/x/exp/slices"
)

const DefaultMaxWinners = 3

var transitions = map[entity.ContestStatus][]entity.ContestStatus{
	entity.ContestStatusDraft:  {entity.ContestStatusActive},
	entity.ContestStatusActive: {entity.ContestStatusClosed, entity.ContestStatusCompleted},
	entity.ContestStatusClosed: {entity.ContestStatusCompleted},
}

type Selection struct {
	UserID   string
	Position int
	// Prize and PrizeAmount default to the contest prize of Position.
	Prize       string
	PrizeAmount *float64
	By          Actor
	Notes       string
}

// WinnerChange lists the winner entries that an operation dropped and the
// ones it created. A winner whose position or prize changed appears in both.
type WinnerChange struct {
	Added   []entity.ContestWinner
	Removed []entity.ContestWinner
}

func (c WinnerChange) WinnerDelta() int64 {
	return int64(len(c.Added) - len(c.Removed))
}

func (c WinnerChange) GainDelta() float64 {
	var delta float64
	for _, w := range c.Added {
		delta += w.PrizeAmount
	}

	for _, w := range c.Removed {
		delta -= w.PrizeAmount
	}

	return delta
}

func MaxWinners(c *entity.Contest) int {
	if c.MaxWinners <= 0 {
		return DefaultMaxWinners
	}

	return c.MaxWinners
}

func ValidateSchedule(start, end, draw time.Time) error {
	if !start.Before(end) || draw.Before(end) {
		return ErrInvalidSchedule
	}

	return nil
}

func CanTransition(from, to entity.ContestStatus) bool {
	return slices.Contains(transitions[from], to)
}

func Transition(c *entity.Contest, to entity.ContestStatus) error {
	if !CanTransition(c.Status, to) {
		return ErrInvalidTransition
	}

	c.Status = to
	return nil
}

// IsOpen reports whether users can join the contest at now.
func IsOpen(c *entity.Contest, now time.Time) bool {
	if c.Status != entity.ContestStatusActive {
		return false
	}

	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return false
	}

	if c.MaxParticipants.Valid && int64(len(c.Participants)) >= c.MaxParticipants.Int64 {
		return false
	}

	return true
}

// AddParticipant enrolls userID. Enrolling an existing participant is a
// no-op, the returned bool tells whether the list changed.
func AddParticipant(c *entity.Contest, userID string, now time.Time) (bool, error) {
	if participantIndex(c, userID) >= 0 {
		return false, nil
	}

	if !IsOpen(c, now) {
		return false, ErrContestNotOpen
	}

	c.Participants = append(c.Participants, entity.ContestParticipant{
		UserID:   userID,
		JoinedAt: now,
	})
	c.CurrentParticipants = len(c.Participants)

	return true, nil
}

// RemoveParticipant drops userID from the contest together with its winner
// entry, if any. Removing an unknown user is a no-op.
func RemoveParticipant(c *entity.Contest, userID string) (bool, WinnerChange) {
	var change WinnerChange

	i := participantIndex(c, userID)
	if i < 0 {
		return false, change
	}

	if w, ok := RemoveWinner(c, userID); ok {
		change.Removed = append(change.Removed, w)
	}

	c.Participants = append(c.Participants[:i], c.Participants[i+1:]...)
	c.CurrentParticipants = len(c.Participants)

	return true, change
}

func SelectWinner(c *entity.Contest, sel Selection, now time.Time) (entity.ContestWinner, error) {
	if now.Before(c.EndDate) {
		return entity.ContestWinner{}, ErrContestNotFinished
	}

	if sel.Position < 1 || sel.Position > MaxWinners(c) {
		return entity.ContestWinner{}, ErrInvalidPosition
	}

	pi := participantIndex(c, sel.UserID)
	if pi < 0 {
		return entity.ContestWinner{}, ErrNotAParticipant
	}

	for _, w := range c.Winners {
		if w.UserID == sel.UserID {
			return entity.ContestWinner{}, ErrAlreadyWinner
		}

		if w.Position == sel.Position {
			return entity.ContestWinner{}, ErrPositionTaken
		}
	}

	prize := PrizeForPosition(c, sel.Position)
	if sel.Prize != "" {
		prize.Label = sel.Prize
	}

	if sel.PrizeAmount != nil {
		prize.Amount = *sel.PrizeAmount
	}

	winner := entity.ContestWinner{
		UserID:      sel.UserID,
		Position:    sel.Position,
		Prize:       prize.Label,
		PrizeAmount: prize.Amount,
		SelectedAt:  now,
		SelectedBy:  sel.By.AdminID(),
		Notes:       sel.Notes,
	}

	c.Winners = append(c.Winners, winner)
	sortWinners(c)
	markWinner(&c.Participants[pi], winner)

	return winner, nil
}

// RemoveWinner drops the winner entry of userID and clears the mirrored
// fields of its participant. Other winners keep their positions.
func RemoveWinner(c *entity.Contest, userID string) (entity.ContestWinner, bool) {
	i := slices.IndexFunc(c.Winners, func(w entity.ContestWinner) bool {
		return w.UserID == userID
	})
	if i < 0 {
		return entity.ContestWinner{}, false
	}

	removed := c.Winners[i]
	c.Winners = append(c.Winners[:i], c.Winners[i+1:]...)

	if pi := participantIndex(c, userID); pi >= 0 {
		clearWinner(&c.Participants[pi])
	}

	return removed, true
}

// SelectMultipleWinners replaces all winners with userIDs ranked 1..N in the
// given order, each receiving the default prize of its position. The whole
// list is validated before anything is changed.
func SelectMultipleWinners(
	c *entity.Contest, userIDs []string, by Actor, now time.Time,
) (WinnerChange, error) {
	if now.Before(c.EndDate) {
		return WinnerChange{}, ErrContestNotFinished
	}

	if len(userIDs) > MaxWinners(c) {
		return WinnerChange{}, ErrTooManyWinners
	}

	for _, id := range userIDs {
		if participantIndex(c, id) < 0 {
			return WinnerChange{}, ErrNotAParticipant
		}
	}

	ranks, err := ranking.FromKeys(userIDs...)
	if err != nil {
		return WinnerChange{}, ErrDuplicateWinner
	}

	winners := make([]entity.ContestWinner, 0, len(userIDs))
	for _, slot := range ranks.Slots() {
		prize := PrizeForPosition(c, slot.Position)
		winners = append(winners, entity.ContestWinner{
			UserID:      slot.Key,
			Position:    slot.Position,
			Prize:       prize.Label,
			PrizeAmount: prize.Amount,
			SelectedAt:  now,
			SelectedBy:  by.AdminID(),
		})
	}

	change := diffWinners(c.Winners, winners)

	for i := range c.Participants {
		clearWinner(&c.Participants[i])
	}

	c.Winners = winners
	for _, w := range c.Winners {
		markWinner(&c.Participants[participantIndex(c, w.UserID)], w)
	}

	return change, nil
}

// Eligible returns the participants which are not winners yet, in
// enrollment order.
func Eligible(c *entity.Contest) []string {
	result := []string{}
	for _, p := range c.Participants {
		if !p.IsWinner {
			result = append(result, p.UserID)
		}
	}

	return result
}

func PrizeForPosition(c *entity.Contest, position int) entity.ContestPrize {
	if position < 1 || position > len(c.Prizes) {
		return entity.ContestPrize{}
	}

	return c.Prizes[position-1]
}

func participantIndex(c *entity.Contest, userID string) int {
	return slices.IndexFunc(c.Participants, func(p entity.ContestParticipant) bool {
		return p.UserID == userID
	})
}

func markWinner(p *entity.ContestParticipant, w entity.ContestWinner) {
	p.IsWinner = true
	p.Position = w.Position
	p.Prize = w.Prize
}

func clearWinner(p *entity.ContestParticipant) {
	p.IsWinner = false
	p.Position = 0
	p.Prize = ""
}

func sortWinners(c *entity.Contest) {
	sort.SliceStable(c.Winners, func(i, j int) bool {
		return c.Winners[i].Position < c.Winners[j].Position
	})
}

func diffWinners(before, after []entity.ContestWinner) WinnerChange {
	same := func(a, b entity.ContestWinner) bool {
		return a.UserID == b.UserID && a.Position == b.Position && a.PrizeAmount == b.PrizeAmount
	}

	var change WinnerChange
	for _, old := range before {
		if slices.IndexFunc(after, func(w entity.ContestWinner) bool { return same(old, w) }) < 0 {
			change.Removed = append(change.Removed, old)
		}
	}

	for _, w := range after {
		if slices.IndexFunc(before, func(old entity.ContestWinner) bool { return same(old, w) }) < 0 {
			change.Added = append(change.Added, w)
		}
	}

	return change
}
