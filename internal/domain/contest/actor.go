package contest

import "database/sql"

// Actor is whoever performs a write on a contest: either the unattended
// system (scheduler, auto creation) or a given admin.
type Actor struct {
	adminID string
}

var System = Actor{}

func Admin(id string) Actor {
	return Actor{adminID: id}
}

func (a Actor) IsSystem() bool {
	return a.adminID == ""
}

func (a Actor) AdminID() string {
	return a.adminID
}

// NullString is the persisted form of the actor, NULL for the system.
func (a Actor) NullString() sql.NullString {
	return sql.NullString{String: a.adminID, Valid: !a.IsSystem()}
}

func (a Actor) String() string {
	if a.IsSystem() {
		return "system"
	}

	return "admin:" + a.adminID
}
