package ui

import (
	"log/slog"

	"collabmeet-client/api"
	"collabmeet-client/chat"
	"collabmeet-client/config"
	"collabmeet-client/models"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// App is the main application
type App struct {
	app   *tview.Application
	pages *tview.Pages
	cfg   *config.Config
	log   *slog.Logger

	client     *api.Client
	controller *chat.Controller

	groups      []models.Group
	meetingOpen bool

	chatView     *tview.TextView
	messageInput *tview.InputField
	headerView   *tview.TextView
	statusLine   *tview.TextView
	statusBar    *tview.TextView
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, log *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		log:    log,
		client: api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, log),
	}
}

// Run starts the application
func (a *App) Run() error {
	a.app = tview.NewApplication()
	a.pages = tview.NewPages()

	// Create empty background
	background := tview.NewBox()
	background.SetBackgroundColor(tcell.NewRGBColor(64, 64, 64))
	a.pages.AddPage("background", background, true, true)

	// Show auth dialog on top
	a.showAuthDialog()

	return a.app.SetRoot(a.pages, true).EnableMouse(false).Run()
}

// quit exits the application
func (a *App) quit() {
	if a.controller != nil {
		a.controller.Close()
	}
	a.app.Stop()
}
