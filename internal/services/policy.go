package services

import (
	"fmt"

	"caredraft/internal/models"
)

// TransitionDecision is the policy's answer for one requested transition
type TransitionDecision struct {
	Allowed bool
	Reason  string
}

func allow() TransitionDecision {
	return TransitionDecision{Allowed: true}
}

func deny(reason string) TransitionDecision {
	return TransitionDecision{Allowed: false, Reason: reason}
}

// TransitionPolicy decides whether an actor may move a proposal between two
// statuses. It is a pure decision function; it never touches storage.
type TransitionPolicy struct{}

func NewTransitionPolicy() *TransitionPolicy {
	return &TransitionPolicy{}
}

// CanTransition applies the role and organization gates:
//   - draft -> review: admin, manager, or the writer who owns the proposal
//   - review -> submitted / review -> draft: admin or manager
//   - any -> archived: admin or manager
//
// The system actor bypasses role and organization gates; nobody may request
// a no-op transition or an undefined edge.
func (p *TransitionPolicy) CanTransition(
	proposal *models.Proposal,
	from, to models.ProposalStatus,
	actor models.Actor,
) TransitionDecision {
	if !from.Valid() || !to.Valid() {
		return deny(fmt.Sprintf("unknown proposal status %q", pickInvalid(from, to)))
	}
	if from == to {
		return deny("no-op transition")
	}
	if actor.System {
		return allow()
	}
	if actor.OrganizationID != proposal.OrganizationID {
		return deny("cross-organization access")
	}

	isManager := actor.Role == models.RoleAdmin || actor.Role == models.RoleManager

	switch {
	case from == models.StatusDraft && to == models.StatusReview:
		if isManager {
			return allow()
		}
		if actor.Role == models.RoleWriter && actor.UserID == proposal.OwnerID {
			return allow()
		}
		return deny("only the proposal owner or a manager can submit a draft for review")

	case from == models.StatusReview && to == models.StatusSubmitted:
		if isManager {
			return allow()
		}
		return deny("only admins or managers can approve a proposal")

	case from == models.StatusReview && to == models.StatusDraft:
		if isManager {
			return allow()
		}
		return deny("only admins or managers can reject a proposal")

	case to == models.StatusArchived:
		if isManager {
			return allow()
		}
		return deny("only admins or managers can archive a proposal")
	}

	return deny(fmt.Sprintf("transition from %s to %s is not allowed", from, to))
}

// CommentRequired reports whether the organization's settings demand a
// justification comment for this transition.
func (p *TransitionPolicy) CommentRequired(from, to models.ProposalStatus, org *models.Organization) bool {
	if org == nil || from != models.StatusReview {
		return false
	}
	if to == models.StatusDraft {
		return org.RequireCommentOnRejection
	}
	if to == models.StatusSubmitted {
		return org.RequireCommentOnApproval
	}
	return false
}

func pickInvalid(from, to models.ProposalStatus) models.ProposalStatus {
	if !from.Valid() {
		return from
	}
	return to
}
