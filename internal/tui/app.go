package tui

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/miccroten/mtadmin/internal/backend/authn"
	"github.com/miccroten/mtadmin/internal/bus"
	"github.com/miccroten/mtadmin/internal/config"
	"github.com/miccroten/mtadmin/internal/idle"
	"github.com/miccroten/mtadmin/internal/inbox"
	"github.com/miccroten/mtadmin/internal/session"
	"github.com/miccroten/mtadmin/internal/tui/keys"
	"github.com/miccroten/mtadmin/internal/tui/model"
	"github.com/miccroten/mtadmin/internal/tui/ui"
	"github.com/miccroten/mtadmin/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	vm        *model.ViewModel
	registry  *keys.Registry
	statusBar *views.StatusBar
	login     *views.LoginView
	dashboard *views.DashboardView

	cfg      *config.Config
	store    *session.Store
	machine  *session.Machine
	timer    *idle.Timer
	sync     *inbox.Synchronizer
	verifier *authn.Verifier
	events   *bus.Bus
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(
	cfg *config.Config,
	profileName string,
	store *session.Store,
	machine *session.Machine,
	timer *idle.Timer,
	sync *inbox.Synchronizer,
	verifier *authn.Verifier,
	events *bus.Bus,
	logger *zap.Logger,
) *App {
	ctx, cancel := context.WithCancel(context.Background())
	vm := model.NewViewModel(store, sync)

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		vm:        vm,
		registry:  keys.NewRegistry(),
		statusBar: views.NewStatusBar(),
		login:     views.NewLoginView(),
		dashboard: views.NewDashboardView(vm),
		cfg:       cfg,
		store:     store,
		machine:   machine,
		timer:     timer,
		sync:      sync,
		verifier:  verifier,
		events:    events,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetProfile(profileName)
	a.statusBar.SetPhase(string(machine.Current()))
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	a.applyTheme()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: func() { a.app.Stop() },
	})
	a.registry.AddGlobal("dark", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "d:dark mode", Visible: true,
		Handler: func() {
			a.store.ToggleDarkMode()
			a.applyTheme()
		},
	})
	a.registry.AddPage("dashboard", "filter", &keys.Action{
		Rune: '/', Key: tcell.KeyRune,
		Description: "/:filter", Visible: true,
		Handler: func() { a.app.SetFocus(a.dashboard.Filter()) },
	})
	a.registry.AddPage("dashboard", "refresh", &keys.Action{
		Rune: 'r', Key: tcell.KeyRune,
		Description: "r:refresh", Visible: true,
		Handler: func() {
			go func() {
				if err := a.sync.Refresh(a.ctx); err != nil {
					a.vm.Flash.Set("Refresh failed: "+err.Error(), 5*time.Second)
				}
				a.app.QueueUpdateDraw(func() {
					a.dashboard.Refresh()
					a.statusBar.SetFlash(a.vm.Flash.Get())
				})
			}()
		},
	})
	a.registry.AddPage("dashboard", "logout", &keys.Action{
		Rune: 'l', Key: tcell.KeyRune,
		Description: "l:sign out", Visible: true,
		Handler: func() { a.doLogout() },
	})
}

func (a *App) setupCallbacks() {
	a.login.SetOnSubmit(func(email, password string) {
		a.startSignIn(email, password)
	})

	a.dashboard.SetOnFilterDone(func() {
		a.app.SetFocus(a.dashboard.Table())
	})

	a.dashboard.Table().SetSelectedFunc(func(row, col int) {
		msg, ok := a.dashboard.SelectedMessage()
		if !ok || msg.Read {
			return
		}
		a.sync.MarkRead(a.ctx, msg.ID)
		a.dashboard.Refresh()
	})

	a.sync.SetOnUpdate(func() {
		a.app.QueueUpdateDraw(func() {
			a.dashboard.Refresh()
		})
	})
}

func (a *App) setupLayout() {
	a.pages.AddPage("login", a.login, true, true)
	a.pages.AddPage("dashboard", a.dashboard, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		// Let text input widgets handle all keys normally.
		focused := a.app.GetFocus()
		if _, ok := focused.(*tview.InputField); ok {
			return event
		}

		if a.registry.HandleEvent(currentPage, event) {
			return nil
		}

		return event
	})
}

func (a *App) startSignIn(email, password string) {
	if err := a.machine.Transition(session.SigningIn); err != nil {
		return
	}
	a.login.ShowBusy()

	go func() {
		identity, err := a.verifier.SignIn(a.ctx, email, password)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				_ = a.machine.Transition(session.SignedOut)
				if errors.Is(err, authn.ErrInvalidCredentials) {
					a.login.ShowError("Invalid email or password")
				} else {
					a.login.ShowError("Sign-in failed: " + err.Error())
				}
				return
			}

			a.store.SetAuth(true, &session.User{Username: identity.Username})
			_ = a.machine.Transition(session.Active)
			a.statusBar.SetUsername(identity.Username)
			a.login.Reset()
			a.showDashboard()
		})
	}()
}

// showDashboard switches to the inbox page. Callers that are not coming
// straight from a successful sign-in get bounced back to login when the
// session is not authenticated.
func (a *App) showDashboard() {
	if !a.store.Authenticated() {
		a.pages.SwitchToPage("login")
		a.app.SetFocus(a.login.Form())
		return
	}

	a.pages.SwitchToPage("dashboard")
	a.app.SetFocus(a.dashboard.Table())
	a.activateDashboard()
}

func (a *App) activateDashboard() {
	if err := a.sync.Activate(a.ctx); err != nil {
		a.vm.Flash.Set("Inbox load failed: "+err.Error(), 5*time.Second)
		a.statusBar.SetFlash(a.vm.Flash.Get())
	}
	a.dashboard.Refresh()

	gracePeriod := int((a.cfg.IdleLogoutAfter - a.cfg.IdleWarnAfter) / time.Second)
	a.timer.Start(a.cfg.IdleWarnAfter, a.cfg.IdleLogoutAfter,
		func() {
			a.events.Publish(bus.Event{Kind: bus.KindIdleWarning})
			a.app.QueueUpdateDraw(func() {
				_ = a.machine.Transition(session.IdleWarned)
				a.dashboard.ShowWarning(gracePeriod)
			})
		},
		func() {
			a.events.Publish(bus.Event{Kind: bus.KindIdleLogout})
			a.app.QueueUpdateDraw(func() {
				a.doLogout()
			})
		},
	)
}

// doLogout tears down the authenticated surface on every exit path,
// whether requested by the user or forced by inactivity.
func (a *App) doLogout() {
	a.timer.Stop()
	a.sync.Deactivate()
	a.store.Logout()
	if a.machine.Current() != session.SignedOut {
		_ = a.machine.Transition(session.SignedOut)
	}
	a.dashboard.HideWarning()
	a.statusBar.SetUsername("")
	a.login.Reset()
	a.pages.SwitchToPage("login")
	a.app.SetFocus(a.login.Form())
}

func (a *App) applyTheme() {
	theme := ui.ForMode(a.store.DarkMode())
	a.login.ApplyTheme(theme)
	a.dashboard.ApplyTheme(theme)
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	go a.watchPhases()
	return a.app.Run()
}

// watchPhases mirrors session phase changes into the status bar.
func (a *App) watchPhases() {
	ch, unsubscribe := a.events.Subscribe("session.", 16)
	defer unsubscribe()

	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if evt.Kind != bus.KindPhaseChanged {
				continue
			}
			change, ok := evt.Payload.(session.PhaseChange)
			if !ok {
				continue
			}
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetPhase(string(change.To))
				a.statusBar.SetFlash(a.vm.Flash.Get())
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
