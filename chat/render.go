package chat

import (
	"fmt"
	"time"

	"collabmeet-client/models"
)

// RenderMessage maps one message plus the current user identity to a chat
// line in tview markup. A message is "mine" iff its author identifier
// equals the current user's. A message without an author, or a missing
// current user, renders as the empty string.
func RenderMessage(msg models.Message, current *models.User) string {
	if msg.User == nil || current == nil {
		return ""
	}

	timeStr := messageTime(msg.Timestamp)
	if msg.User.ID == current.ID {
		return fmt.Sprintf("[gray]%s[-] [white]→ %s[-]", timeStr, msg.Content)
	}
	return fmt.Sprintf("[gray]%s[-] [yellow]← %s: %s[-]", timeStr, msg.User.Username, msg.Content)
}

func messageTime(timestamp string) string {
	if t, err := time.Parse(time.RFC3339, timestamp); err == nil {
		return t.Local().Format("15:04")
	}
	// Fall back to the raw HH:MM slice of an ISO timestamp
	if len(timestamp) >= 16 {
		return timestamp[11:16]
	}
	return timestamp
}
