package quest

import (
	"errors"
	"fmt"

	"github.com/questguild/questbot/questbot/store"
)

// Sentinel errors for the lifecycle. Command handlers match on these with
// errors.Is to pick the user-facing message; everything else surfaces as a
// persistence failure.
var (
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidState     = errors.New("invalid quest state")
	ErrNotAssignee      = errors.New("not the quest assignee")
	ErrAlreadyAssigned  = errors.New("quest already assigned")
	ErrPersistence      = errors.New("persistence failure")

	ErrNotFound        = store.ErrNotFound
	ErrVersionConflict = store.ErrVersionConflict
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func persistErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

// UserMessage maps a lifecycle error to a short message suitable for a
// command reply. Unrecognized errors get a generic line so internal detail
// never reaches chat.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrPermissionDenied):
		return "You don't have permission to do that."
	case errors.Is(err, ErrNotFound):
		return "Quest not found."
	case errors.Is(err, ErrAlreadyAssigned):
		return "This quest has already been taken by someone else."
	case errors.Is(err, ErrNotAssignee):
		return "Only the member who accepted this quest can do that."
	case errors.Is(err, ErrInvalidState):
		return "This quest is not in the right state for that action."
	case errors.Is(err, ErrVersionConflict):
		return "Someone else changed this quest at the same time. Please try again."
	default:
		return "Something went wrong. Please try again later."
	}
}
