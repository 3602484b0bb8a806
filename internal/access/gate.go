package access

import (
	"github.com/vgridasov/WebRegLog/internal/models"
)

// Capability is the action being authorized against a journal.
type Capability string

const (
	CapabilityRead       Capability = "read"
	CapabilityWrite      Capability = "write"
	CapabilityAnalyze    Capability = "analyze"
	CapabilityAdminister Capability = "administer"
)

type Outcome int

const (
	Allow Outcome = iota
	Deny
	NotFound
	BadRequest
)

type Verdict struct {
	Outcome Outcome
	Reason  string
}

func allow() Verdict {
	return Verdict{Outcome: Allow}
}

func deny(reason string) Verdict {
	return Verdict{Outcome: Deny, Reason: reason}
}

// Caller is the already-authenticated identity requesting the operation.
type Caller struct {
	ID   uint
	Role string
}

// Authorize decides whether the caller may perform the capability on the
// journal. Pure function over its inputs: no I/O, safe for concurrent use.
//
// Global admins bypass the ACL entirely. The administer capability (journal
// create/update/delete, ACL management) is admin-only. For everyone else the
// journal's access list decides: write requires a registrar grant, analyze an
// analyst grant, read either. A user listed more than once gets the union of
// the granted roles.
func Authorize(caller Caller, journal *models.Journal, capability Capability) Verdict {
	if capability == CapabilityAdminister {
		if caller.Role == models.RoleAdmin {
			return allow()
		}
		return deny("administrator privileges required")
	}

	if caller.Role == models.RoleAdmin {
		return allow()
	}

	if journal == nil || !journal.IsActive {
		return Verdict{Outcome: NotFound}
	}

	var asRegistrar, asAnalyst bool
	for _, grant := range journal.Access {
		if grant.UserID != caller.ID {
			continue
		}
		switch grant.Role {
		case models.JournalRoleRegistrar:
			asRegistrar = true
		case models.JournalRoleAnalyst:
			asAnalyst = true
		}
	}

	if !asRegistrar && !asAnalyst {
		return deny("no access to this journal")
	}

	switch capability {
	case CapabilityRead:
		return allow()
	case CapabilityWrite:
		if asRegistrar {
			return allow()
		}
		return deny("registrar access required")
	case CapabilityAnalyze:
		if asAnalyst {
			return allow()
		}
		return deny("analyst access required")
	}

	return deny("unknown capability")
}
