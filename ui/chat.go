package ui

import (
	"context"
	"fmt"
	"strings"

	"collabmeet-client/chat"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func (a *App) showChatScreen() {
	a.pages.RemovePage("auth")
	a.pages.RemovePage("background")

	a.controller = chat.NewController(a.client, a.cfg.PollInterval, a.log)

	chatPage := a.createChatPage()
	a.pages.AddPage("chat", chatPage, true, true)
	a.app.SetFocus(a.messageInput)
	// The hook can fire on the UI thread (dismiss) as well as from the poll
	// goroutine, so the redraw is always queued from a fresh goroutine.
	a.controller.SetOnChange(func() {
		go a.app.QueueUpdateDraw(func() {
			a.refreshChatView()
			a.checkPendingMeeting()
		})
	})

	a.initializeGroup()
}

// initializeGroup fetches the group record and starts polling. While the
// fetch fails the screen stays in its loading state; F5 retries.
func (a *App) initializeGroup() {
	a.headerView.SetText("[gray]Loading group…[-]")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
		defer cancel()

		err := a.controller.Initialize(ctx)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.log.Warn("group fetch failed", "error", err)
				a.headerView.SetText("[red]Group unavailable - press F5 to retry[-]")
				return
			}
			group := a.controller.Group()
			a.headerView.SetText(fmt.Sprintf("[white]Group: %s[-] [gray]│ %d members │ polling every %s[-]",
				group.Name, len(group.Members), a.cfg.PollInterval))
			a.controller.Start()
		})
	}()
}

func (a *App) createChatPage() tview.Primitive {
	// Group header
	a.headerView = tview.NewTextView()
	a.headerView.SetBorder(true)
	a.headerView.SetBorderColor(ColorBorder)
	a.headerView.SetBackgroundColor(ColorBg)
	a.headerView.SetTextColor(ColorFg)
	a.headerView.SetDynamicColors(true)
	a.headerView.SetTextAlign(tview.AlignCenter)

	// Chat history view
	a.chatView = tview.NewTextView()
	a.chatView.SetBorder(true)
	a.chatView.SetBorderColor(ColorBorder)
	a.chatView.SetBackgroundColor(ColorBg)
	a.chatView.SetTitle(" Messages ")
	a.chatView.SetTitleColor(ColorTitle)
	a.chatView.SetTextColor(ColorFg)
	a.chatView.SetDynamicColors(true)
	a.chatView.SetScrollable(true)
	a.chatView.ScrollToEnd()

	// Message input
	a.messageInput = tview.NewInputField()
	a.messageInput.SetLabel("> ")
	a.messageInput.SetFieldWidth(0)
	a.messageInput.SetBackgroundColor(ColorBg)
	a.messageInput.SetFieldBackgroundColor(ColorField)
	a.messageInput.SetFieldTextColor(ColorFg)
	a.messageInput.SetLabelColor(ColorHighlight)
	a.messageInput.SetBorder(true)
	a.messageInput.SetBorderColor(ColorBorder)
	a.messageInput.SetTitle(" Message ")
	a.messageInput.SetTitleColor(ColorTitle)

	a.messageInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			a.sendCurrentMessage()
		}
	})

	// Error line for failed user actions
	a.statusLine = tview.NewTextView()
	a.statusLine.SetBackgroundColor(ColorBg)
	a.statusLine.SetTextColor(tcell.ColorRed)
	a.statusLine.SetDynamicColors(true)

	// Status bar
	a.statusBar = tview.NewTextView()
	a.statusBar.SetBackgroundColor(ColorButton)
	a.statusBar.SetTextColor(ColorTitle)
	a.statusBar.SetTextAlign(tview.AlignCenter)
	a.statusBar.SetText(" Enter:Send | Tab:Scroll | F5:Refresh | F10:Quit ")

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.headerView, 3, 0, false).
		AddItem(a.chatView, 0, 1, false).
		AddItem(a.messageInput, 3, 0, true).
		AddItem(a.statusLine, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)
	mainFlex.SetBackgroundColor(ColorBg)

	chatViewFocused := false

	mainFlex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			chatViewFocused = !chatViewFocused
			if chatViewFocused {
				a.app.SetFocus(a.chatView)
				a.statusBar.SetText(" ↑↓/PgUp/PgDn:Scroll | Home:Top | End:Bottom | Tab:Input ")
			} else {
				a.app.SetFocus(a.messageInput)
				a.statusBar.SetText(" Enter:Send | Tab:Scroll | F5:Refresh | F10:Quit ")
			}
			return nil
		case tcell.KeyF5:
			a.manualRefresh()
			return nil
		case tcell.KeyF10:
			a.quit()
			return nil
		case tcell.KeyPgUp:
			row, col := a.chatView.GetScrollOffset()
			a.chatView.ScrollTo(row-10, col)
			return nil
		case tcell.KeyPgDn:
			row, col := a.chatView.GetScrollOffset()
			a.chatView.ScrollTo(row+10, col)
			return nil
		case tcell.KeyHome:
			if chatViewFocused {
				a.chatView.ScrollToBeginning()
				return nil
			}
		case tcell.KeyEnd:
			if chatViewFocused {
				a.chatView.ScrollToEnd()
				return nil
			}
		}
		return event
	})

	return mainFlex
}

// manualRefresh retries initialize while the group is still loading,
// otherwise forces a poll cycle out of schedule.
func (a *App) manualRefresh() {
	if a.controller.Group() == nil {
		a.initializeGroup()
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
		defer cancel()
		if err := a.controller.Refresh(ctx); err != nil {
			a.log.Warn("manual refresh failed", "error", err)
		}
	}()
}

func (a *App) refreshChatView() {
	if a.chatView == nil {
		return
	}

	messages := a.controller.Messages()
	current := a.client.CurrentUser()

	_, _, width, _ := a.chatView.GetInnerRect()
	if width < 10 {
		width = 80 // Default width
	}

	a.chatView.Clear()
	var sb strings.Builder
	var lastDate string

	for _, msg := range messages {
		line := chat.RenderMessage(msg, current)
		if line == "" {
			continue
		}

		// Insert date separator when the day changes
		msgDate := ""
		if len(msg.Timestamp) >= 10 {
			msgDate = msg.Timestamp[:10]
		}
		if msgDate != "" && msgDate != lastDate {
			dateLabel := formatDateSeparator(msg.Timestamp)
			padding := (width - len(dateLabel)) / 2
			if padding < 0 {
				padding = 0
			}
			sb.WriteString(fmt.Sprintf("[gray]%s%s[-]\n", strings.Repeat(" ", padding), dateLabel))
			lastDate = msgDate
		}

		sb.WriteString(line)
		sb.WriteString("\n")
	}

	a.chatView.SetText(sb.String())
	a.chatView.ScrollToEnd()
}

func (a *App) sendCurrentMessage() {
	text := a.messageInput.GetText()
	if strings.TrimSpace(text) == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
		defer cancel()

		err := a.controller.Send(ctx, text)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				// Input stays untouched so the user can retry
				a.statusLine.SetText(fmt.Sprintf("Send failed: %v", err))
				return
			}
			a.messageInput.SetText("")
			a.statusLine.SetText("")
			a.refreshChatView()
			a.checkPendingMeeting()
		})
	}()
}

func (a *App) checkPendingMeeting() {
	if a.meetingOpen {
		return
	}
	if proposal := a.controller.PendingMeeting(); proposal != nil {
		a.meetingOpen = true
		a.showMeetingDialog(proposal)
	}
}
