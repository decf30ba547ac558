package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepartment(t *testing.T) {
	tests := []struct {
		in    Department
		norm  Department
		label string
	}{
		{"camera", DepartmentCamera, "Camera"},
		{" Makeup ", DepartmentMakeup, "Hair & Makeup"},
		{"TRANSPORTATION", DepartmentTransportation, "Transportation"},
		{"vfx", DepartmentOther, "Other"},
		{"", DepartmentOther, "Other"},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.norm, tt.in.Normalize())
			assert.Equal(t, tt.label, tt.in.Label())
		})
	}
	assert.Less(t, DepartmentProduction.Rank(), DepartmentCamera.Rank())
	assert.Equal(t, DepartmentOther.Rank(), Department("legacy").Rank())
}

func TestCastType(t *testing.T) {
	assert.Equal(t, 0, CastLead.Priority())
	assert.Equal(t, 1, CastSupporting.Priority())
	assert.Equal(t, 2, CastDayPlayer.Priority())
	assert.Equal(t, 3, CastBackground.Priority())
	assert.Equal(t, 2, CastType("cameo").Priority())
	assert.Equal(t, "Other", CastType("cameo").Label())
	assert.Equal(t, "Day Player", CastType("DayPlayer").Label())
	assert.True(t, CastType("Background").IsBackground())
	assert.False(t, CastType("").IsBackground())
}

func TestEventType(t *testing.T) {
	assert.Equal(t, EventMove, EventType("Move").Normalize())
	assert.Equal(t, "Company Move", EventMove.Label())
	assert.Equal(t, EventOther, EventType("lunch").Normalize())
	assert.Equal(t, "Other", EventType("").Label())
}
