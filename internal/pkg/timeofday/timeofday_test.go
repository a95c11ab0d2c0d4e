package timeofday

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "12h morning", input: "9:00 AM", want: TimeOfDay{9, 0}},
		{name: "12h evening padded", input: "09:00 PM", want: TimeOfDay{21, 0}},
		{name: "midnight lower case", input: "12:15 am", want: TimeOfDay{0, 15}},
		{name: "noon", input: "12:00 PM", want: TimeOfDay{12, 0}},
		{name: "no space before period", input: "6:45PM", want: TimeOfDay{18, 45}},
		{name: "hour only with period", input: "9 pm", want: TimeOfDay{21, 0}},
		{name: "24h padded", input: "09:00", want: TimeOfDay{9, 0}},
		{name: "24h afternoon", input: "18:30", want: TimeOfDay{18, 30}},
		{name: "hour only", input: "9", want: TimeOfDay{9, 0}},
		{name: "surrounding whitespace", input: "  07:05  ", want: TimeOfDay{7, 5}},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "nine o'clock", wantErr: true},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minutes out of range", input: "10:60", wantErr: true},
		{name: "zero hour with period", input: "0:30 AM", wantErr: true},
		{name: "13 with period", input: "13:00 PM", wantErr: true},
		{name: "single digit minutes", input: "9:5", wantErr: true},
		{name: "seconds not accepted", input: "09:00:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var parseErr *ParseError
				assert.True(t, errors.As(err, &parseErr))
				assert.Equal(t, tt.input, parseErr.Input)
				assert.NotEmpty(t, parseErr.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDay_On(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)
	got := TimeOfDay{Hours: 18, Minutes: 30}.On(day)

	assert.Equal(t, time.Date(2024, 5, 1, 18, 30, 0, 0, loc), got)
	assert.Equal(t, "18:30", TimeOfDay{Hours: 18, Minutes: 30}.String())
}
