package inbox

import (
	"fmt"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/pkg/errors"
)

// AssignmentPolicy decides whether a support conversation claimed by a
// moderator can be handed back to the pool.
type AssignmentPolicy string

const (
	// PolicySticky keeps the first moderator who replied as owner forever.
	PolicySticky AssignmentPolicy = "sticky"
	// PolicyReleasable lets the assigned moderator release the conversation.
	PolicyReleasable AssignmentPolicy = "releasable"
)

func ParseAssignmentPolicy(s string) (AssignmentPolicy, error) {
	switch AssignmentPolicy(s) {
	case PolicySticky, PolicyReleasable:
		return AssignmentPolicy(s), nil
	case "":
		return PolicySticky, nil
	}
	return "", fmt.Errorf("unknown assignment policy %q", s)
}

// AssignmentState is either Unassigned or AssignedTo(moderator).
type AssignmentState struct {
	Moderator string
}

func StateOf(conv *entity.Conversation) AssignmentState {
	if conv == nil {
		return AssignmentState{}
	}
	return AssignmentState{Moderator: conv.AssignedModerator}
}

func (s AssignmentState) Assigned() bool {
	return s.Moderator != ""
}

// OnModeratorSend applies the gate to a send by moderator on the support
// surface. It returns the next state, whether the state changed, or a
// permission error when another moderator holds the conversation.
func (s AssignmentState) OnModeratorSend(moderator string) (AssignmentState, bool, error) {
	switch {
	case !s.Assigned():
		return AssignmentState{Moderator: moderator}, true, nil
	case s.Moderator == moderator:
		return s, false, nil
	default:
		return s, false, errors.Forbidden("This conversation is assigned to another moderator", nil)
	}
}

// Release returns the conversation to the pool under policy.
func (s AssignmentState) Release(moderator string, policy AssignmentPolicy) (AssignmentState, error) {
	if policy != PolicyReleasable {
		return s, errors.Forbidden("Support assignments cannot be released", nil)
	}
	if !s.Assigned() {
		return s, errors.Conflict("Conversation is not assigned")
	}
	if s.Moderator != moderator {
		return s, errors.Forbidden("Only the assigned moderator can release this conversation", nil)
	}
	return AssignmentState{}, nil
}
