package pipeline

import "time"

// DefaultDurationMinutes is assumed for bookings with no recorded duration.
const DefaultDurationMinutes = 30

// Booking represents an interviewer's claim on a time slot.
type Booking struct {
	InterviewID     string
	InterviewerID   string
	Start           time.Time
	DurationMinutes int
}

// Window returns the half-open interval [start, start+duration) occupied by
// the booking. A zero or negative duration falls back to DefaultDurationMinutes.
func (b Booking) Window() (time.Time, time.Time) {
	minutes := b.DurationMinutes
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}
	return b.Start, b.Start.Add(time.Duration(minutes) * time.Minute)
}

// Conflict details an overlapping booking that callers can present to users.
type Conflict struct {
	WithInterviewID string
	InterviewerID   string
	Start           time.Time
	End             time.Time
}

// FindConflict returns the first existing booking whose window overlaps the
// candidate's, or nil when the slot is free. Two half-open intervals overlap
// iff each starts before the other ends. Bookings for other interviewers and
// the booking identified by the candidate's own InterviewID are ignored, which
// lets reschedule checks exclude the interview being moved.
func FindConflict(existing []Booking, candidate Booking) *Conflict {
	newStart, newEnd := candidate.Window()

	for _, booked := range existing {
		if booked.InterviewerID != candidate.InterviewerID {
			continue
		}
		if candidate.InterviewID != "" && booked.InterviewID == candidate.InterviewID {
			continue
		}

		existingStart, existingEnd := booked.Window()
		if newStart.Before(existingEnd) && newEnd.After(existingStart) {
			return &Conflict{
				WithInterviewID: booked.InterviewID,
				InterviewerID:   booked.InterviewerID,
				Start:           existingStart,
				End:             existingEnd,
			}
		}
	}

	return nil
}
