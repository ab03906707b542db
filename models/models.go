package models

// User is a registered account as the backend serializes it.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Group is a named set of users sharing one chat stream. Read-only to the
// client; created and managed by the backend.
type Group struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Members []User `json:"members,omitempty"`
}

// Message is one chat message. User may be nil when the backend returns a
// partial record; renderers must tolerate that.
type Message struct {
	ID        int64  `json:"id"`
	User      *User  `json:"user"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"` // ISO 8601, server-assigned
}

// Meeting is a proposal produced by the backend's language detector as a
// side effect of posting a message. SuggestedTimes are ISO 8601 instants in
// the order the detector emitted them.
type Meeting struct {
	ID             int64    `json:"id"`
	Description    string   `json:"description"`
	SuggestedTimes []string `json:"suggested_times"`
	Creator        *User    `json:"creator"`
	MeetLink       string   `json:"google_meet_link,omitempty"`
}

// Session holds the credential material returned by register/login.
type Session struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// SendResult is the outcome of posting a message: the stored record plus an
// optional meeting proposal when the backend detected meeting intent.
// Message is nil when the response was malformed and the record was dropped.
type SendResult struct {
	Message *Message
	Meeting *Meeting
}
