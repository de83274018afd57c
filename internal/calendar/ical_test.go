package calendar

import (
	"bytes"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRoundTripsThroughDecoder(t *testing.T) {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	slots := []*model.Slot{
		{ID: uuid.New(), Title: "Standup", StartTime: start, EndTime: start.Add(time.Hour), Status: model.SlotStatusBusy, UpdatedAt: start},
		{ID: uuid.New(), Title: "Review", StartTime: start.Add(3 * time.Hour), EndTime: start.Add(4 * time.Hour), Status: model.SlotStatusSwapPending, UpdatedAt: start},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "Ann", slots, start))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	summary, err := events[0].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Standup", summary)

	gotStart, err := events[0].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, gotStart.Equal(start))

	gotEnd, err := events[1].DateTimeEnd(time.UTC)
	require.NoError(t, err)
	assert.True(t, gotEnd.Equal(start.Add(4*time.Hour)))

	status, err := events[1].Props.Text(ical.PropStatus)
	require.NoError(t, err)
	assert.Equal(t, "TENTATIVE", status)
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Encode(&buf, "Ann", nil, time.Now()), ErrEmpty)
	assert.Zero(t, buf.Len())
}
