package ui

import (
	"context"
	"fmt"

	"collabmeet-client/meeting"
	"collabmeet-client/models"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// showMeetingDialog presents the suggested times for a backend-detected
// meeting proposal and carries out the user's choice.
func (a *App) showMeetingDialog(proposal *models.Meeting) {
	picker := meeting.NewPicker(a.client, proposal)

	form := tview.NewForm()
	form.SetBackgroundColor(ColorBg)
	form.SetFieldBackgroundColor(ColorField)
	form.SetFieldTextColor(ColorFg)
	form.SetLabelColor(ColorHighlight)
	form.SetButtonBackgroundColor(ColorButton)
	form.SetButtonTextColor(ColorTitle)
	form.SetBorder(true)
	form.SetBorderColor(ColorBorder)
	form.SetTitle(" Choose a meeting time ")
	form.SetTitleColor(ColorTitle)

	statusLabel := tview.NewTextView()
	statusLabel.SetBackgroundColor(ColorBg)
	statusLabel.SetTextColor(tcell.ColorRed)

	description := tview.NewTextView()
	description.SetBackgroundColor(ColorBg)
	description.SetTextColor(ColorFg)
	description.SetText(proposal.Description)

	notice := tview.NewTextView()
	notice.SetBackgroundColor(ColorBg)
	notice.SetTextColor(tcell.ColorYellow)

	slots := picker.Slots()
	if picker.HasSuggestions() {
		labels := make([]string, len(slots))
		for i, slot := range slots {
			labels[i] = formatSlot(slot)
		}
		dropDown := tview.NewDropDown()
		dropDown.SetLabel("Slot: ")
		dropDown.SetFieldWidth(34)
		dropDown.SetFieldBackgroundColor(ColorField)
		dropDown.SetFieldTextColor(ColorFg)
		dropDown.SetLabelColor(ColorHighlight)
		dropDown.SetOptions(labels, func(text string, index int) {
			if index >= 0 && index < len(slots) {
				picker.Select(slots[index])
			}
		})
		form.AddFormItem(dropDown)

		form.AddButton("Confirm", func() {
			if picker.Selected().IsZero() {
				statusLabel.SetText("Pick a slot first")
				return
			}
			statusLabel.SetText("Scheduling…")
			a.confirmMeeting(picker, statusLabel)
		})
	} else {
		// Defined empty state: no Confirm button at all
		notice.SetText("⚠ No suggested times available.")
	}

	form.AddButton("Cancel", func() {
		a.closeMeetingDialog()
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
				AddItem(description, 2, 0, false).
				AddItem(notice, 1, 0, false).
				AddItem(form, 0, 1, true), 48, 0, true).
			AddItem(nil, 0, 1, false), 13, 0, true).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(statusLabel, 48, 0, false).
			AddItem(nil, 0, 1, false), 1, 0, false).
		AddItem(nil, 0, 1, false)
	flex.SetBackgroundColor(ColorBg)

	a.pages.AddPage("meeting", flex, true, true)
	a.app.SetFocus(form)
}

func (a *App) confirmMeeting(picker *meeting.Picker, statusLabel *tview.TextView) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*a.cfg.RequestTimeout)
		defer cancel()

		err := picker.Confirm(ctx)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				// Modal stays open for retry
				a.log.Warn("meeting confirm failed", "meeting", picker.Meeting().ID, "error", err)
				statusLabel.SetText(fmt.Sprintf("Failed to schedule meeting: %v", err))
				return
			}
			a.closeMeetingDialog()
		})
	}()
}

func (a *App) closeMeetingDialog() {
	a.pages.RemovePage("meeting")
	a.meetingOpen = false
	a.controller.DismissMeeting()
	a.app.SetFocus(a.messageInput)
}
