// Package calendar exports slots as an iCalendar feed.
package calendar

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/emersion/go-ical"
)

const productID = "-//slot_swapper//EN"

// ErrEmpty is returned for an empty slot list; a VCALENDAR needs at least one component.
var ErrEmpty = errors.New("calendar has no events")

// Encode writes slots as VEVENTs of one VCALENDAR.
func Encode(w io.Writer, name string, slots []*model.Slot, now time.Time) error {
	if len(slots) == 0 {
		return ErrEmpty
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	if name != "" {
		cal.Props.SetText("X-WR-CALNAME", name)
	}

	for _, slot := range slots {
		cal.Children = append(cal.Children, toEvent(slot, now))
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func toEvent(slot *model.Slot, now time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, slot.ID.String()+"@slot_swapper")
	ve.Props.SetText(ical.PropSummary, slot.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, slot.StartTime.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, slot.EndTime.UTC())
	ve.Props.SetDateTime(ical.PropLastModified, slot.UpdatedAt.UTC())
	ve.Props.SetText(ical.PropCategories, string(slot.Status))

	// A slot promised to a pending swap may still change hands.
	if slot.IsPending() {
		ve.Props.SetText(ical.PropStatus, "TENTATIVE")
	} else {
		ve.Props.SetText(ical.PropStatus, "CONFIRMED")
	}
	return ve
}
