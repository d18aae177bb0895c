package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/artem13815/accounts/pkg/apperr"
)

func TestPolicies(t *testing.T) {
	admin := User{ID: uuid.New(), Role: RoleAdmin}
	member := User{ID: uuid.New(), Role: RoleUser}
	other := uuid.New()
	role := RoleUser

	tests := []struct {
		name    string
		d       Decision
		allowed bool
	}{
		{"admin lists", CanList(admin), true},
		{"user lists", CanList(member), false},
		{"user views self", CanView(member, member.ID), true},
		{"user views other", CanView(member, other), false},
		{"admin views other", CanView(admin, other), true},
		{"user patches self", CanUpdate(member, member.ID, Patch{}), true},
		{"user patches other", CanUpdate(member, other, Patch{}), false},
		{"user patches own role", CanUpdate(member, member.ID, Patch{Role: &role}), false},
		{"admin patches role", CanUpdate(admin, other, Patch{Role: &role}), true},
		{"admin removes other", CanRemove(admin, other), true},
		{"admin removes self", CanRemove(admin, admin.ID), false},
		{"user removes other", CanRemove(member, other), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.d.Allowed)
			if tt.allowed {
				assert.NoError(t, tt.d.Err())
				return
			}
			assert.NotEmpty(t, tt.d.Reason)
			assert.ErrorIs(t, tt.d.Err(), apperr.ErrForbidden)
		})
	}
}
