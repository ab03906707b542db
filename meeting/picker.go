package meeting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"collabmeet-client/models"
)

// Scheduler is the slice of the backend the picker needs to carry out a
// confirmed choice.
type Scheduler interface {
	ScheduleMeeting(ctx context.Context, meetingID int64, slot time.Time) error
	SendMessage(ctx context.Context, content string) (*models.SendResult, error)
}

// Picker holds one meeting proposal while the user chooses among its
// suggested times. It performs no backend call until Confirm.
type Picker struct {
	api     Scheduler
	meeting *models.Meeting

	slots     []time.Time
	selected  time.Time
	scheduled bool
}

// NewPicker wraps a proposal. Suggested times are parsed in the order
// received; entries that are not valid ISO 8601 instants are dropped.
func NewPicker(api Scheduler, meeting *models.Meeting) *Picker {
	p := &Picker{api: api, meeting: meeting}
	for _, raw := range meeting.SuggestedTimes {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			p.slots = append(p.slots, t)
		}
	}
	return p
}

// Meeting returns the wrapped proposal.
func (p *Picker) Meeting() *models.Meeting {
	return p.meeting
}

// Slots returns the selectable instants in the order the backend suggested
// them.
func (p *Picker) Slots() []time.Time {
	return p.slots
}

// HasSuggestions reports whether there is anything to pick. Without
// suggestions the picker shows its empty state and confirmation stays
// disabled.
func (p *Picker) HasSuggestions() bool {
	return len(p.slots) > 0
}

// Select records the chosen slot.
func (p *Picker) Select(t time.Time) {
	p.selected = t
}

// Selected returns the chosen slot, zero when nothing is selected yet.
func (p *Picker) Selected() time.Time {
	return p.selected
}

// Confirm carries out the choice: it persists the chosen time against the
// meeting, then posts the formatted confirmation message into the chat.
// Without a selection it is a no-op with no backend call. The second call
// only runs once the first has succeeded; on a retry after a partial
// failure the already-persisted schedule step is skipped, and the
// confirmation content is keyed on the meeting identifier so a double post
// carries identical content.
func (p *Picker) Confirm(ctx context.Context) error {
	if p.selected.IsZero() {
		return nil
	}

	if !p.scheduled {
		if err := p.api.ScheduleMeeting(ctx, p.meeting.ID, p.selected); err != nil {
			return err
		}
		p.scheduled = true
	}

	if _, err := p.api.SendMessage(ctx, ConfirmationContent(p.meeting, p.selected)); err != nil {
		return err
	}
	return nil
}

// ConfirmationContent builds the chat announcement for a scheduled meeting.
// The content is deterministic for a given meeting and slot.
func ConfirmationContent(m *models.Meeting, slot time.Time) string {
	creator := "unknown"
	if m.Creator != nil && m.Creator.Username != "" {
		creator = m.Creator.Username
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 *Meeting Scheduled* (#%d)\n", m.ID)
	fmt.Fprintf(&b, "🗓️ %s at %s\n", slot.Format("Monday, January 2, 2006"), slot.Format("15:04"))
	fmt.Fprintf(&b, "👤 Created by: %s", creator)
	if m.MeetLink != "" {
		fmt.Fprintf(&b, "\n🔗 (%s)", m.MeetLink)
	}
	return b.String()
}
