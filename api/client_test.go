package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"collabmeet-client/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, testLogger()), srv
}

func TestGroups(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/groups/" || r.Method != http.MethodGet {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `[{"id":1,"name":"Team zee"},{"id":2,"name":"Team Beta"}]`)
	})

	groups, err := client.Groups(context.Background())
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "Team zee" {
		t.Errorf("Unexpected groups: %+v", groups)
	}
}

func TestRegisterWithTokens(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["username"] != "alice" || payload["group"] != float64(1) {
			t.Errorf("Unexpected register payload: %v", payload)
		}
		io.WriteString(w, `{"access":"tok","refresh":"ref","user":{"id":9,"username":"alice"}}`)
	})

	sess, err := client.Register(context.Background(), "alice", "a@example.com", "secret", 1)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if sess.Access != "tok" || sess.User.ID != 9 {
		t.Errorf("Unexpected session: %+v", sess)
	}
}

func TestRegisterBareUserPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":9,"username":"alice","email":"a@example.com"}`)
	})

	sess, err := client.Register(context.Background(), "alice", "a@example.com", "secret", 1)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if sess.User.ID != 9 || sess.Access != "" {
		t.Errorf("Unexpected session: %+v", sess)
	}
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, `[]`)
	})

	client.SetSession(&models.Session{Access: "tok", User: models.User{ID: 9, Username: "alice"}})
	if _, err := client.Messages(context.Background()); err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Missing bearer token, got %q", gotAuth)
	}
}

func TestSendMessageEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"message":{"id":2,"user":{"id":9,"username":"alice"},"content":"Let's meet","timestamp":"2024-01-09T10:00:00Z"},
			"meeting":{"id":7,"description":"Let's meet","suggested_times":["2024-01-10T10:00:00Z","2024-01-10T14:00:00Z"],"creator":{"id":9,"username":"alice"}}
		}`)
	})

	result, err := client.SendMessage(context.Background(), "Let's meet")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if result.Message == nil || result.Message.ID != 2 {
		t.Fatalf("Unexpected message: %+v", result.Message)
	}
	if result.Meeting == nil || result.Meeting.ID != 7 || len(result.Meeting.SuggestedTimes) != 2 {
		t.Fatalf("Unexpected meeting: %+v", result.Meeting)
	}
}

func TestSendMessageBareObject(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":3,"user":{"id":9,"username":"alice"},"content":"hi","timestamp":"2024-01-09T10:00:00Z"}`)
	})

	result, err := client.SendMessage(context.Background(), "hi")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if result.Message == nil || result.Message.ID != 3 {
		t.Errorf("Bare message object not accepted: %+v", result.Message)
	}
	if result.Meeting != nil {
		t.Errorf("Unexpected meeting: %+v", result.Meeting)
	}
}

func TestSendMessageMissingIDDropped(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":{"content":"hi"},"meeting":{"id":7,"suggested_times":[]}}`)
	})

	result, err := client.SendMessage(context.Background(), "hi")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if result.Message != nil {
		t.Errorf("Malformed message should be dropped, got %+v", result.Message)
	}
	if result.Meeting == nil || result.Meeting.ID != 7 {
		t.Errorf("Meeting should survive a malformed message, got %+v", result.Meeting)
	}
}

func TestScheduleMeeting(t *testing.T) {
	var payload map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/schedule/" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&payload)
		io.WriteString(w, `{"status":"meeting scheduled"}`)
	})

	slot := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	if err := client.ScheduleMeeting(context.Background(), 7, slot); err != nil {
		t.Fatalf("ScheduleMeeting failed: %v", err)
	}
	if payload["meeting_id"] != float64(7) || payload["time"] != "2024-01-10T10:00:00Z" {
		t.Errorf("Unexpected schedule payload: %v", payload)
	}
}

func TestNon2xxIsAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Invalid credentials"}`, http.StatusUnauthorized)
	})

	_, err := client.Login(context.Background(), "a@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Unexpected status: %d", apiErr.Status)
	}
}
