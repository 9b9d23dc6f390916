package appointment

import (
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
)

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps treats slots as half-open: back-to-back appointments do not conflict.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.Start.Before(o.End) && s.End.After(o.Start)
}

// ResolveSlot derives the end from the service duration unless end is given.
func ResolveSlot(start time.Time, end *time.Time, durationMin int) (TimeSlot, error) {
	slot := TimeSlot{Start: start}

	switch {
	case end != nil:
		slot.End = *end
	case durationMin > 0:
		slot.End = start.Add(time.Duration(durationMin) * time.Minute)
	default:
		return TimeSlot{}, httperr.ErrBusiness("end_time_required")
	}

	if !slot.End.After(slot.Start) {
		return TimeSlot{}, httperr.ErrBusiness("invalid_time_range")
	}
	return slot, nil
}

// FreeSlots cuts [from, to) into back-to-back slots of length d and drops
// those overlapping busy or starting before now.
func FreeSlots(from, to time.Time, d time.Duration, busy []TimeSlot, now time.Time) []TimeSlot {
	slots := []TimeSlot{}
	if d <= 0 {
		return slots
	}

	for cur := from; !cur.Add(d).After(to); cur = cur.Add(d) {
		slot := TimeSlot{Start: cur, End: cur.Add(d)}
		if slot.Start.Before(now) {
			continue
		}

		free := true
		for _, b := range busy {
			if slot.Overlaps(b) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, slot)
		}
	}

	return slots
}
