package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 19, hour, minute, 0, 0, time.UTC)
}

func TestRangesOverlap(t *testing.T) {
	exStart, exEnd := at(9, 0), at(10, 0)

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"starts inside", at(9, 30), at(10, 30), true},
		{"ends inside", at(8, 30), at(9, 30), true},
		{"contains existing", at(8, 0), at(11, 0), true},
		{"inside existing", at(9, 15), at(9, 45), true},
		{"identical", at(9, 0), at(10, 0), true},
		{"touches end", at(10, 0), at(11, 0), false},
		{"touches start", at(8, 0), at(9, 0), false},
		{"before", at(7, 0), at(8, 0), false},
		{"after", at(11, 0), at(12, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RangesOverlap(exStart, exEnd, tt.start, tt.end))
		})
	}
}

func TestSlotOverlaps(t *testing.T) {
	slot := &Slot{StartTime: at(14, 0), EndTime: at(15, 0)}

	assert.True(t, slot.Overlaps(at(14, 30), at(16, 0)))
	assert.False(t, slot.Overlaps(at(15, 0), at(16, 0)))
}

func TestParseSlotStatus(t *testing.T) {
	status, err := ParseSlotStatus("SWAPPABLE")
	require.NoError(t, err)
	assert.Equal(t, SlotStatusSwappable, status)

	_, err = ParseSlotStatus("swappable")
	assert.Error(t, err)
}

func TestSlotStatusOwnerSettable(t *testing.T) {
	assert.True(t, SlotStatusBusy.OwnerSettable())
	assert.True(t, SlotStatusSwappable.OwnerSettable())
	assert.False(t, SlotStatusSwapPending.OwnerSettable())
	assert.False(t, SlotStatus("UNKNOWN").OwnerSettable())
}

func TestSwapRequestStatus(t *testing.T) {
	assert.False(t, SwapRequestStatusPending.IsTerminal())
	assert.True(t, SwapRequestStatusAccepted.IsTerminal())
	assert.True(t, SwapRequestStatusRejected.IsTerminal())

	_, err := ParseSwapRequestStatus("CANCELLED")
	assert.Error(t, err)
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).DisplayName())
	assert.Equal(t, "@ada", (&User{Username: "ada"}).DisplayName())
}
