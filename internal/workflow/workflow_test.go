package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentease-service/internal/model"
)

var (
	admin  = model.Actor{UserID: "a1", Role: model.RoleAdmin}
	owner  = model.Actor{UserID: "o1", Role: model.RoleUser}
	tenant = model.Actor{UserID: "t1", Role: model.RoleUser}
	nobody = model.Actor{}
)

func listing(status model.Status) model.Property {
	return model.Property{ID: "p1", OwnerID: "o1", Status: status, ContactNumber: "9876543210"}
}

var allStatuses = []model.Status{model.StatusPending, model.StatusApproved, model.StatusRejected}

func TestValidateTransition_AdminFromPending(t *testing.T) {
	p := listing(model.StatusPending)
	assert.NoError(t, ValidateTransition(admin, p, model.StatusApproved))
	assert.NoError(t, ValidateTransition(admin, p, model.StatusRejected))
	assert.ErrorIs(t, ValidateTransition(admin, p, model.StatusPending), ErrInvalidTransition)
}

func TestValidateTransition_NoEdgesOutOfTerminalStates(t *testing.T) {
	for _, from := range []model.Status{model.StatusApproved, model.StatusRejected} {
		for _, to := range allStatuses {
			err := ValidateTransition(admin, listing(from), to)
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
		}
	}
}

func TestValidateTransition_NonAdmin(t *testing.T) {
	for _, actor := range []model.Actor{owner, tenant, nobody} {
		err := ValidateTransition(actor, listing(model.StatusPending), model.StatusApproved)
		assert.ErrorIs(t, err, ErrNotAdmin)
		assert.False(t, CanTransition(actor, listing(model.StatusPending), model.StatusRejected))
	}
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	err := ValidateTransition(admin, listing(model.StatusPending), model.Status("archived"))
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestApprove_MakesListingPublic(t *testing.T) {
	p := listing(model.StatusPending)
	require.False(t, IsPubliclyVisible(p))

	approved, err := Approve(admin, p)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.True(t, IsPubliclyVisible(approved))
	assert.Equal(t, model.StatusPending, p.Status, "input is not mutated")

	_, err = Reject(admin, approved)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestIsPubliclyVisible(t *testing.T) {
	assert.True(t, IsPubliclyVisible(listing(model.StatusApproved)))
	assert.False(t, IsPubliclyVisible(listing(model.StatusPending)))
	assert.False(t, IsPubliclyVisible(listing(model.StatusRejected)))
	assert.False(t, IsPubliclyVisible(listing("")))
}

func TestCanEdit(t *testing.T) {
	for _, s := range allStatuses {
		p := listing(s)
		assert.True(t, CanEdit(admin, p))
		assert.True(t, CanEdit(owner, p), "owners edit in any status: %s", s)
		assert.False(t, CanEdit(tenant, p))
		assert.False(t, CanEdit(nobody, p))
	}
	assert.False(t, CanEdit(nobody, model.Property{}), "anonymous never owns an unowned listing")
}

func TestCanViewContactNumber(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, CanViewContactNumber(admin, listing(s)))
		assert.False(t, CanViewContactNumber(tenant, listing(s)))
		assert.False(t, CanViewContactNumber(owner, listing(s)))
	}
}

func TestCanView(t *testing.T) {
	assert.True(t, CanView(nobody, listing(model.StatusApproved)))
	assert.False(t, CanView(tenant, listing(model.StatusPending)))
	assert.True(t, CanView(owner, listing(model.StatusRejected)))
	assert.True(t, CanView(admin, listing(model.StatusRejected)))
}

func TestStatusAfterEdit(t *testing.T) {
	for _, s := range allStatuses {
		assert.Equal(t, model.StatusPending, StatusAfterEdit(owner, listing(s)))
		assert.Equal(t, s, StatusAfterEdit(admin, listing(s)))
	}
}

func TestProject(t *testing.T) {
	p := listing(model.StatusApproved)

	v := Project(tenant, p)
	assert.Empty(t, v.ContactNumber)
	assert.False(t, v.CanEdit)

	v = Project(owner, p)
	assert.Empty(t, v.ContactNumber)
	assert.True(t, v.CanEdit)

	v = Project(admin, p)
	assert.Equal(t, "9876543210", v.ContactNumber)
	assert.True(t, v.CanEdit)
}
