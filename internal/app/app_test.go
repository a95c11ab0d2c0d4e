package app

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "secret", AccessExpiration: "1h"},
		App: config.AppConfig{Timezone: "Asia/Kolkata"},
		Policy: config.PolicyConfig{
			FullDaySeconds: 9 * 3600,
			HalfDaySeconds: 4*3600 + 1800,
		},
		Store: config.StoreConfig{Driver: DriverMemory},
	}
}

func TestNew_MemoryDriver(t *testing.T) {
	a, err := New(context.Background(), memoryConfig())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.DB)
	employee := user.Actor{ID: "emp-1", Name: "Ravi", Role: user.RoleEmployee}
	rec, err := a.Attendance.ClockIn(context.Background(), employee, attendance.ClockInRequest{})
	require.NoError(t, err)
	assert.Equal(t, attendance.StateCheckedIn, rec.State())

	token, _, err := a.JWT.GenerateAccessToken(employee)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store.Driver = "sqlite"
	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown store driver")
}
