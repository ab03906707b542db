package ui

import (
	"time"
)

// formatSlot formats a suggested meeting instant for the picker list.
func formatSlot(t time.Time) string {
	return t.Format("Mon, Jan 2 15:04")
}

// formatDateSeparator formats a date for display as a separator
func formatDateSeparator(timestamp string) string {
	if len(timestamp) < 10 {
		return ""
	}

	// Parse the date part (YYYY-MM-DD)
	t, err := time.Parse("2006-01-02", timestamp[:10])
	if err != nil {
		return timestamp[:10]
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	msgDate := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())

	if msgDate.Equal(today) {
		return "Today"
	} else if msgDate.Equal(yesterday) {
		return "Yesterday"
	} else if msgDate.Year() == now.Year() {
		return t.Format("January 2")
	} else {
		return t.Format("January 2, 2006")
	}
}
