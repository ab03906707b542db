package meeting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"collabmeet-client/models"
)

type fakeScheduler struct {
	calls       []string
	scheduleErr error
	sendErr     error
	lastContent string
	lastSlot    time.Time
}

func (s *fakeScheduler) ScheduleMeeting(ctx context.Context, meetingID int64, slot time.Time) error {
	s.calls = append(s.calls, "schedule")
	if s.scheduleErr != nil {
		return s.scheduleErr
	}
	s.lastSlot = slot
	return nil
}

func (s *fakeScheduler) SendMessage(ctx context.Context, content string) (*models.SendResult, error) {
	s.calls = append(s.calls, "send")
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.lastContent = content
	return &models.SendResult{}, nil
}

func proposal() *models.Meeting {
	return &models.Meeting{
		ID:             7,
		Description:    "Let's meet tomorrow",
		SuggestedTimes: []string{"2024-01-10T10:00:00Z", "2024-01-10T14:00:00Z"},
		Creator:        &models.User{ID: 9, Username: "alice"},
		MeetLink:       "https://meet.google.com/xvp-mfko-qwz",
	}
}

func TestSlotsPreserveOrder(t *testing.T) {
	p := NewPicker(&fakeScheduler{}, proposal())

	slots := p.Slots()
	if len(slots) != 2 {
		t.Fatalf("Expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Before(slots[1]) {
		t.Errorf("Slots reordered: %v", slots)
	}
	if slots[0].Hour() != 10 || slots[1].Hour() != 14 {
		t.Errorf("Unexpected slots: %v", slots)
	}
}

func TestUnparsableSlotsDropped(t *testing.T) {
	m := proposal()
	m.SuggestedTimes = []string{"not-a-time", "2024-01-10T14:00:00Z"}
	p := NewPicker(&fakeScheduler{}, m)

	if len(p.Slots()) != 1 {
		t.Errorf("Expected 1 valid slot, got %v", p.Slots())
	}
}

func TestNoSuggestions(t *testing.T) {
	m := proposal()
	m.SuggestedTimes = nil
	p := NewPicker(&fakeScheduler{}, m)

	if p.HasSuggestions() {
		t.Errorf("Expected no-suggestions state")
	}
}

func TestConfirmWithoutSelectionIsNoOp(t *testing.T) {
	s := &fakeScheduler{}
	p := NewPicker(s, proposal())

	if err := p.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if len(s.calls) != 0 {
		t.Errorf("Expected no backend calls, got %v", s.calls)
	}
}

func TestConfirmScheduleThenPost(t *testing.T) {
	s := &fakeScheduler{}
	p := NewPicker(s, proposal())
	p.Select(p.Slots()[0])

	if err := p.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if len(s.calls) != 2 || s.calls[0] != "schedule" || s.calls[1] != "send" {
		t.Fatalf("Expected schedule then send, got %v", s.calls)
	}
	if !s.lastSlot.Equal(p.Slots()[0]) {
		t.Errorf("Wrong slot scheduled: %v", s.lastSlot)
	}
	if !strings.Contains(s.lastContent, "alice") || !strings.Contains(s.lastContent, "#7") {
		t.Errorf("Unexpected confirmation content: %q", s.lastContent)
	}
}

func TestConfirmScheduleFailureSkipsPost(t *testing.T) {
	s := &fakeScheduler{scheduleErr: errors.New("server returned 500")}
	p := NewPicker(s, proposal())
	p.Select(p.Slots()[0])

	if err := p.Confirm(context.Background()); err == nil {
		t.Fatalf("Expected error from Confirm")
	}
	if len(s.calls) != 1 || s.calls[0] != "schedule" {
		t.Errorf("Post must not run after failed schedule, calls: %v", s.calls)
	}
}

func TestConfirmRetryAfterPostFailure(t *testing.T) {
	s := &fakeScheduler{sendErr: errors.New("server returned 500")}
	p := NewPicker(s, proposal())
	p.Select(p.Slots()[0])

	if err := p.Confirm(context.Background()); err == nil {
		t.Fatalf("Expected error from Confirm")
	}

	// Retry must not schedule a second time
	s.sendErr = nil
	if err := p.Confirm(context.Background()); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if got := strings.Join(s.calls, ","); got != "schedule,send,send" {
		t.Errorf("Unexpected call sequence: %s", got)
	}
}

func TestConfirmationContentDeterministic(t *testing.T) {
	slot := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	content := ConfirmationContent(proposal(), slot)

	if content != ConfirmationContent(proposal(), slot) {
		t.Errorf("Content not deterministic")
	}
	if !strings.Contains(content, "Wednesday, January 10, 2024") {
		t.Errorf("Missing localized date: %q", content)
	}
	if !strings.Contains(content, "10:00") {
		t.Errorf("Missing time: %q", content)
	}
	if !strings.Contains(content, "https://meet.google.com/xvp-mfko-qwz") {
		t.Errorf("Missing meet link: %q", content)
	}
}

func TestConfirmationContentUnknownCreator(t *testing.T) {
	m := proposal()
	m.Creator = nil
	m.MeetLink = ""
	content := ConfirmationContent(m, time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC))

	if !strings.Contains(content, "unknown") {
		t.Errorf("Expected unknown creator fallback: %q", content)
	}
	if strings.Contains(content, "🔗") {
		t.Errorf("Link line should be omitted without a link: %q", content)
	}
}
