package access

import (
	"testing"

	"github.com/vgridasov/WebRegLog/internal/models"
	"github.com/stretchr/testify/assert"
)

func activeJournal(grants ...models.JournalAccess) *models.Journal {
	return &models.Journal{
		ID:       1,
		Name:     "Visitors",
		UniqueID: "jr-visitors",
		Access:   grants,
		IsActive: true,
	}
}

func TestAuthorizeAdminister(t *testing.T) {
	journal := activeJournal(models.JournalAccess{UserID: 2, Role: models.JournalRoleRegistrar})

	t.Run("admin allowed", func(t *testing.T) {
		verdict := Authorize(Caller{ID: 1, Role: models.RoleAdmin}, journal, CapabilityAdminister)
		assert.Equal(t, Allow, verdict.Outcome)
	})

	t.Run("registrar denied even with a grant", func(t *testing.T) {
		verdict := Authorize(Caller{ID: 2, Role: models.RoleRegistrar}, journal, CapabilityAdminister)
		assert.Equal(t, Deny, verdict.Outcome)
		assert.NotEmpty(t, verdict.Reason)
	})

	t.Run("analyst denied", func(t *testing.T) {
		verdict := Authorize(Caller{ID: 3, Role: models.RoleAnalyst}, journal, CapabilityAdminister)
		assert.Equal(t, Deny, verdict.Outcome)
	})
}

func TestAuthorizeAdminBypass(t *testing.T) {
	admin := Caller{ID: 1, Role: models.RoleAdmin}

	t.Run("empty access list", func(t *testing.T) {
		journal := activeJournal()
		for _, capability := range []Capability{CapabilityRead, CapabilityWrite, CapabilityAnalyze} {
			verdict := Authorize(admin, journal, capability)
			assert.Equal(t, Allow, verdict.Outcome, "admin should bypass ACL for %s", capability)
		}
	})

	t.Run("even on an inactive journal", func(t *testing.T) {
		journal := activeJournal()
		journal.IsActive = false
		verdict := Authorize(admin, journal, CapabilityRead)
		assert.Equal(t, Allow, verdict.Outcome)
	})
}

func TestAuthorizeMissingJournal(t *testing.T) {
	caller := Caller{ID: 2, Role: models.RoleRegistrar}

	t.Run("nil journal", func(t *testing.T) {
		verdict := Authorize(caller, nil, CapabilityRead)
		assert.Equal(t, NotFound, verdict.Outcome)
	})

	t.Run("inactive journal looks like a missing one", func(t *testing.T) {
		journal := activeJournal(models.JournalAccess{UserID: 2, Role: models.JournalRoleRegistrar})
		journal.IsActive = false
		verdict := Authorize(caller, journal, CapabilityRead)
		assert.Equal(t, NotFound, verdict.Outcome)
	})
}

func TestAuthorizeGrants(t *testing.T) {
	journal := activeJournal(
		models.JournalAccess{UserID: 2, Role: models.JournalRoleRegistrar},
		models.JournalAccess{UserID: 3, Role: models.JournalRoleAnalyst},
	)

	registrar := Caller{ID: 2, Role: models.RoleRegistrar}
	analyst := Caller{ID: 3, Role: models.RoleAnalyst}
	stranger := Caller{ID: 4, Role: models.RoleRegistrar}

	t.Run("registrar grant", func(t *testing.T) {
		assert.Equal(t, Allow, Authorize(registrar, journal, CapabilityRead).Outcome)
		assert.Equal(t, Allow, Authorize(registrar, journal, CapabilityWrite).Outcome)

		verdict := Authorize(registrar, journal, CapabilityAnalyze)
		assert.Equal(t, Deny, verdict.Outcome)
		assert.Equal(t, "analyst access required", verdict.Reason)
	})

	t.Run("analyst grant", func(t *testing.T) {
		assert.Equal(t, Allow, Authorize(analyst, journal, CapabilityRead).Outcome)
		assert.Equal(t, Allow, Authorize(analyst, journal, CapabilityAnalyze).Outcome)

		verdict := Authorize(analyst, journal, CapabilityWrite)
		assert.Equal(t, Deny, verdict.Outcome)
		assert.Equal(t, "registrar access required", verdict.Reason)
	})

	t.Run("no grant at all", func(t *testing.T) {
		for _, capability := range []Capability{CapabilityRead, CapabilityWrite, CapabilityAnalyze} {
			verdict := Authorize(stranger, journal, capability)
			assert.Equal(t, Deny, verdict.Outcome)
			assert.Equal(t, "no access to this journal", verdict.Reason)
		}
	})
}

func TestAuthorizeAfterGrantAdded(t *testing.T) {
	journal := activeJournal()
	caller := Caller{ID: 6, Role: models.RoleAnalyst}

	verdict := Authorize(caller, journal, CapabilityRead)
	assert.Equal(t, Deny, verdict.Outcome)

	journal.Access = append(journal.Access, models.JournalAccess{UserID: 6, Role: models.JournalRoleAnalyst})

	assert.Equal(t, Allow, Authorize(caller, journal, CapabilityRead).Outcome)
	assert.Equal(t, Allow, Authorize(caller, journal, CapabilityAnalyze).Outcome)
	assert.Equal(t, Deny, Authorize(caller, journal, CapabilityWrite).Outcome)
}

func TestAuthorizeDuplicateGrantsUnion(t *testing.T) {
	// The same user granted both journal roles gets the union of both.
	journal := activeJournal(
		models.JournalAccess{UserID: 5, Role: models.JournalRoleAnalyst},
		models.JournalAccess{UserID: 5, Role: models.JournalRoleRegistrar},
	)
	caller := Caller{ID: 5, Role: models.RoleRegistrar}

	assert.Equal(t, Allow, Authorize(caller, journal, CapabilityRead).Outcome)
	assert.Equal(t, Allow, Authorize(caller, journal, CapabilityWrite).Outcome)
	assert.Equal(t, Allow, Authorize(caller, journal, CapabilityAnalyze).Outcome)
}
