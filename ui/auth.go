package ui

import (
	"context"
	"fmt"
	"strings"

	"collabmeet-client/models"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func (a *App) showAuthDialog() {
	// Form container
	form := tview.NewForm()
	form.SetBackgroundColor(ColorBg)
	form.SetFieldBackgroundColor(ColorField)
	form.SetFieldTextColor(ColorFg)
	form.SetLabelColor(ColorHighlight)
	form.SetButtonBackgroundColor(ColorButton)
	form.SetButtonTextColor(ColorTitle)
	form.SetBorder(true)
	form.SetBorderColor(ColorBorder)
	form.SetTitle(" CollabMeet ")
	form.SetTitleColor(ColorTitle)

	var usernameField, emailField, passwordField, confirmField *tview.InputField
	var groupDropDown *tview.DropDown
	var statusText *tview.TextView

	statusText = tview.NewTextView()
	statusText.SetBackgroundColor(ColorBg)
	statusText.SetTextColor(tcell.ColorRed)
	statusText.SetTextAlign(tview.AlignCenter)
	statusText.SetDynamicColors(true)

	usernameField = tview.NewInputField()
	usernameField.SetLabel("Username: ")
	usernameField.SetFieldWidth(30)

	emailField = tview.NewInputField()
	emailField.SetLabel("Email: ")
	emailField.SetFieldWidth(30)

	passwordField = tview.NewInputField()
	passwordField.SetLabel("Password: ")
	passwordField.SetFieldWidth(30)
	passwordField.SetMaskCharacter('*')

	confirmField = tview.NewInputField()
	confirmField.SetLabel("Confirm: ")
	confirmField.SetFieldWidth(30)
	confirmField.SetMaskCharacter('*')

	groupDropDown = tview.NewDropDown()
	groupDropDown.SetLabel("Group: ")
	groupDropDown.SetFieldWidth(30)
	groupDropDown.SetFieldBackgroundColor(ColorField)
	groupDropDown.SetFieldTextColor(ColorFg)
	groupDropDown.SetLabelColor(ColorHighlight)

	form.AddFormItem(usernameField)
	form.AddFormItem(emailField)
	form.AddFormItem(passwordField)
	form.AddFormItem(confirmField)
	form.AddFormItem(groupDropDown)

	a.loadGroups(groupDropDown, statusText)

	form.AddButton("Login", func() {
		email := emailField.GetText()
		password := passwordField.GetText()
		if email == "" || password == "" {
			statusText.SetText("Please enter email and password")
			return
		}
		a.doLogin(email, password, statusText)
	})

	form.AddButton("Register", func() {
		username := strings.TrimSpace(usernameField.GetText())
		email := strings.TrimSpace(emailField.GetText())
		password := passwordField.GetText()
		confirm := confirmField.GetText()

		if username == "" || email == "" || password == "" {
			statusText.SetText("Please fill in username, email and password")
			return
		}
		if password != confirm {
			statusText.SetText("Passwords do not match")
			return
		}

		idx, _ := groupDropDown.GetCurrentOption()
		if idx < 0 || idx >= len(a.groups) {
			statusText.SetText("Please pick a group")
			return
		}
		a.doRegister(username, email, password, a.groups[idx].ID, statusText)
	})

	form.AddButton("Quit", func() {
		a.app.Stop()
	})

	// Center the form
	formFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(statusText, 1, 0, false)

	width := 54
	height := 17

	modal := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(formFlex, width, 0, true).
			AddItem(nil, 0, 1, false), height, 0, true).
		AddItem(nil, 0, 1, false)

	a.pages.AddPage("auth", modal, true, true)
	a.app.SetFocus(form)
}

// loadGroups fetches the group list once and preselects the preferred group
// when it is present.
func (a *App) loadGroups(dropDown *tview.DropDown, statusText *tview.TextView) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
		defer cancel()

		groups, err := a.client.Groups(ctx)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.log.Warn("group list fetch failed", "error", err)
				statusText.SetText("Could not load groups")
				return
			}
			a.groups = groups
			names := make([]string, len(groups))
			selected := 0
			for i, g := range groups {
				names[i] = g.Name
				if g.Name == a.cfg.PreferredGroup {
					selected = i
				}
			}
			dropDown.SetOptions(names, nil)
			if len(names) > 0 {
				dropDown.SetCurrentOption(selected)
			}
		})
	}()
}

func (a *App) doLogin(email, password string, statusText *tview.TextView) {
	statusText.SetText("Signing in...")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
		defer cancel()

		sess, err := a.client.Login(ctx, email, password)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				statusText.SetText(fmt.Sprintf("Login failed: %v", err))
				return
			}
			a.startSession(sess)
		})
	}()
}

func (a *App) doRegister(username, email, password string, groupID int64, statusText *tview.TextView) {
	statusText.SetText("Creating account...")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
		defer cancel()

		sess, err := a.client.Register(ctx, username, email, password, groupID)
		if err != nil {
			a.app.QueueUpdateDraw(func() {
				statusText.SetText(fmt.Sprintf("Registration failed: %v", err))
			})
			return
		}

		// Backends without tokens in the register reply need a login round
		if sess.Access == "" {
			sess, err = a.client.Login(ctx, email, password)
			if err != nil {
				a.app.QueueUpdateDraw(func() {
					statusText.SetText(fmt.Sprintf("Registered, but login failed: %v", err))
				})
				return
			}
		}

		a.app.QueueUpdateDraw(func() {
			a.startSession(sess)
		})
	}()
}

func (a *App) startSession(sess *models.Session) {
	a.client.SetSession(sess)
	a.log.Info("session established", "user", sess.User.Username)
	a.showChatScreen()
}
