package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Messages shown to the caller when a status move is denied.
const (
	MsgOnlyOwnerCanFinish = "Only the task owner can move tasks to Done status"
	MsgNotOwnerOrAssignee = "You must be either the owner or assignee to move this task"
)

var (
	ErrOnlyOwnerCanFinish = errors.New("only the owner may move a task to done")
	ErrNotOwnerOrAssignee = errors.New("actor is neither owner nor assignee")
)

// CanTransition reports whether actor may move t to the requested status.
// Only the destination matters: Done is reserved for the owner, every other
// status is open to the owner and the assignee.
func CanTransition(actor uuid.UUID, t *Task, requested Status) bool {
	return CheckTransition(actor, t, requested) == nil
}

// CheckTransition is CanTransition with the reason for a denial.
func CheckTransition(actor uuid.UUID, t *Task, requested Status) error {
	if actor == t.OwnerID {
		return nil
	}
	if requested == StatusDone {
		return ErrOnlyOwnerCanFinish
	}
	if t.HasAssignee() && *t.AssigneeID == actor {
		return nil
	}
	return ErrNotOwnerOrAssignee
}

// DenialMessage maps a CheckTransition error to the text shown to the caller.
func DenialMessage(err error) string {
	switch {
	case errors.Is(err, ErrOnlyOwnerCanFinish):
		return MsgOnlyOwnerCanFinish
	case errors.Is(err, ErrNotOwnerOrAssignee):
		return MsgNotOwnerOrAssignee
	default:
		return ""
	}
}

// Transition checks the rule, moves t to the requested status and returns the
// history entry that was appended. t is left untouched on denial.
func Transition(t *Task, actor uuid.UUID, requested Status, comment string, at time.Time) (HistoryEntry, error) {
	if err := CheckTransition(actor, t, requested); err != nil {
		return HistoryEntry{}, err
	}

	if comment == "" {
		comment = fmt.Sprintf("Status changed from %s to %s", t.Status, requested)
	}

	entry := HistoryEntry{
		Status:    requested,
		ChangedBy: actor,
		ChangedAt: at,
		Comment:   comment,
	}
	t.Status = requested
	t.StatusHistory = append(t.StatusHistory, entry)
	return entry, nil
}
