package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       Role
		permission Permission
		want       bool
	}{
		{RoleEmployee, PermissionAttendanceClock, true},
		{RoleEmployee, PermissionAttendanceEdit, false},
		{RoleHR, PermissionAttendanceEdit, true},
		{RoleHR, PermissionAuditView, false},
		{RoleAdmin, PermissionAuditView, true},
		{Role("contractor"), PermissionAttendanceClock, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.permission), func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.permission))
		})
	}
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)

	want := Actor{ID: "u-1", Name: "Asha", Role: RoleHR}
	got, ok := ActorFromContext(WithActor(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, got.IsAdmin())
	assert.False(t, Actor{Role: RoleEmployee}.IsAdmin())
}
