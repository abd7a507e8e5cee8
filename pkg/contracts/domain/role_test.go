package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{input: "admin", want: RoleAdmin},
		{input: "reseller", want: RoleReseller},
		{input: "customer", want: RoleCustomer},
		{input: "guest", want: RoleGuest},
		{input: "superuser", wantErr: true},
		{input: "Admin", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestRoleSetContains(t *testing.T) {
	set := RoleSet{RoleAdmin, RoleReseller}
	assert.True(t, set.Contains(RoleAdmin))
	assert.True(t, set.Contains(RoleReseller))
	assert.False(t, set.Contains(RoleCustomer))
	assert.False(t, RoleSet{}.Contains(RoleAdmin))
}

func TestNewRequestContext(t *testing.T) {
	ref := time.Date(2025, 3, 6, 12, 0, 0, 0, time.UTC)
	rc := NewRequestContext(RoleReseller, "rs1", ref)
	assert.Equal(t, RoleReseller, rc.Role)
	assert.Equal(t, "rs1", rc.ResellerID)
	assert.Equal(t, ref, rc.ReferenceDate)

	// A zero reference date defaults to the wall clock.
	rc = NewRequestContext(RoleAdmin, "", time.Time{})
	assert.False(t, rc.ReferenceDate.IsZero())
}
