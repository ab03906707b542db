package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"collabmeet-client/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// ErrGroupUnavailable reports that the group record could not be fetched.
// The controller stays in its loading state until Initialize is retried.
var ErrGroupUnavailable = errors.New("group unavailable")

// Gateway is the slice of the backend the controller needs.
type Gateway interface {
	CurrentGroup(ctx context.Context) (*models.Group, error)
	Messages(ctx context.Context) ([]models.Message, error)
	SendMessage(ctx context.Context, content string) (*models.SendResult, error)
}

// Controller keeps the local view of one group's messages eventually
// consistent with the backend. Local state is a map keyed by message
// identifier: each refresh rebuilds it from the server list, and messages
// appended optimistically by Send are retained until a refresh shows the
// backend has indexed them, at which point the server copy wins. Rendering
// order is timestamp then identifier, so an optimistic entry never
// duplicates or reorders against a concurrent poll.
type Controller struct {
	gw       Gateway
	log      *slog.Logger
	interval time.Duration
	onChange func()

	mu         sync.Mutex
	group      *models.Group
	byID       map[int64]models.Message
	optimistic map[int64]bool
	pending    *models.Meeting
	active     bool

	ticker *time.Ticker
	done   chan struct{}

	polls     metric.Int64Counter
	pollFails metric.Int64Counter
}

// NewController creates a controller polling at the given interval. The
// interval is an explicit parameter so tests can drive Refresh directly
// without waiting on a timer.
func NewController(gw Gateway, interval time.Duration, log *slog.Logger) *Controller {
	meter := otel.Meter("collabmeet/chat")
	polls, _ := meter.Int64Counter("chat.polls")
	pollFails, _ := meter.Int64Counter("chat.poll_failures")

	return &Controller{
		gw:         gw,
		log:        log,
		interval:   interval,
		byID:       make(map[int64]models.Message),
		optimistic: make(map[int64]bool),
		active:     true,
		polls:      polls,
		pollFails:  pollFails,
	}
}

// SetOnChange installs a hook invoked after every state change. The UI uses
// it to schedule a redraw; it must not call back into the controller.
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Initialize fetches the group record. Until it succeeds the controller has
// no group and polling must not be started.
func (c *Controller) Initialize(ctx context.Context) error {
	group, err := c.gw.CurrentGroup(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGroupUnavailable, err)
	}
	c.mu.Lock()
	c.group = group
	c.mu.Unlock()
	return nil
}

// Group returns the group record, or nil while still loading.
func (c *Controller) Group() *models.Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.group
}

// Refresh fetches the full message list and converges local state to it.
// A refresh completing after Close is discarded.
func (c *Controller) Refresh(ctx context.Context) error {
	messages, err := c.gw.Messages(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return nil
	}
	next := make(map[int64]models.Message, len(messages))
	for _, m := range messages {
		next[m.ID] = m
		delete(c.optimistic, m.ID)
	}
	// Keep optimistic entries the backend has not indexed yet
	for id := range c.optimistic {
		if m, ok := c.byID[id]; ok {
			next[id] = m
		}
	}
	c.byID = next
	c.mu.Unlock()

	c.notify()
	return nil
}

// Send posts text as a new message and appends the returned record without
// waiting for the next poll. Whitespace-only input is a no-op with no HTTP
// call. When the response carries a meeting proposal it becomes the pending
// meeting. On error nothing changes locally, so the caller can keep the
// input buffer for retry.
func (c *Controller) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	result, err := c.gw.SendMessage(ctx, text)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.active {
		if result.Message != nil {
			c.byID[result.Message.ID] = *result.Message
			c.optimistic[result.Message.ID] = true
		} else {
			c.log.Warn("send succeeded but message record was dropped as malformed")
		}
		if result.Meeting != nil {
			c.pending = result.Meeting
		}
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

// Messages returns a snapshot sorted by timestamp, then identifier.
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	snapshot := make([]models.Message, 0, len(c.byID))
	for _, m := range c.byID {
		snapshot = append(snapshot, m)
	}
	c.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].Timestamp != snapshot[j].Timestamp {
			return snapshot[i].Timestamp < snapshot[j].Timestamp
		}
		return snapshot[i].ID < snapshot[j].ID
	})
	return snapshot
}

// PendingMeeting returns the proposal awaiting a scheduling decision, or
// nil.
func (c *Controller) PendingMeeting() *models.Meeting {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// DismissMeeting clears the pending proposal without any backend call.
func (c *Controller) DismissMeeting() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
	c.notify()
}

// Start refreshes immediately and then on every tick until Close. Poll
// failures are logged and retried on the next tick; they are never surfaced
// to the user.
func (c *Controller) Start() {
	if c.ticker != nil {
		return
	}
	c.ticker = time.NewTicker(c.interval)
	c.done = make(chan struct{})

	go c.poll()
	go func() {
		for {
			select {
			case <-c.done:
				return
			case <-c.ticker.C:
				c.poll()
			}
		}
	}()
}

func (c *Controller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), c.interval)
	defer cancel()

	c.polls.Add(ctx, 1)
	if err := c.Refresh(ctx); err != nil {
		c.pollFails.Add(ctx, 1)
		c.log.Warn("poll refresh failed", "error", err)
	}
}

// Close stops polling and marks the controller inactive so in-flight
// refreshes are discarded when they complete.
func (c *Controller) Close() {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()

	if c.ticker != nil {
		c.ticker.Stop()
		close(c.done)
		c.ticker = nil
	}
}
