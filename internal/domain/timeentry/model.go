package timeentry

import "github.com/rpggio/recordkeep/internal/domain/access"

// Namespace is the store tag for time entries.
const Namespace = "TIME"

// RoleWorker is the party who logged an entry.
const RoleWorker access.Role = "worker"

// Entry is a logged span of work awaiting or holding approval
type Entry struct {
	EntryID   uint64           `json:"entry_id"`
	Worker    access.Principal `json:"worker"`
	TaskRef   string           `json:"task_ref"`
	StartTime uint64           `json:"start_time"`
	EndTime   uint64           `json:"end_time"`
	Hours     uint64           `json:"hours"`
	Approved  bool             `json:"approved"`
}

// PrincipalFor implements access.RoleHolder.
func (e *Entry) PrincipalFor(role access.Role) (access.Principal, bool) {
	if role == RoleWorker {
		return e.Worker, true
	}
	return "", false
}
