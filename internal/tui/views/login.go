package views

import (
	"fmt"

	"github.com/miccroten/mtadmin/internal/tui/ui"
	"github.com/rivo/tview"
)

// LoginView is the unauthenticated entry surface: email and password
// fields plus an inline error line. Credential checking happens elsewhere;
// the view only collects input and renders outcomes.
type LoginView struct {
	*tview.Flex
	form   *tview.Form
	status *tview.TextView

	onSubmit func(email, password string)
}

// NewLoginView creates the login form.
func NewLoginView() *LoginView {
	lv := &LoginView{}

	lv.form = tview.NewForm().
		AddInputField("Email", "", 40, nil, nil).
		AddPasswordField("Password", "", 40, '*', nil).
		AddButton("Sign In", func() { lv.submit() })
	lv.form.SetBorder(true).SetTitle(" MICCROTEN Admin · Sign In ")

	lv.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	lv.Flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(tview.NewBox(), 0, 1, false).
		AddItem(lv.form, 11, 0, true).
		AddItem(lv.status, 1, 0, false).
		AddItem(tview.NewBox(), 0, 1, false)

	return lv
}

func (lv *LoginView) submit() {
	if lv.onSubmit == nil {
		return
	}
	email := lv.form.GetFormItemByLabel("Email").(*tview.InputField).GetText()
	password := lv.form.GetFormItemByLabel("Password").(*tview.InputField).GetText()
	if email == "" || password == "" {
		lv.ShowError("Email and password are required")
		return
	}
	lv.onSubmit(email, password)
}

// SetOnSubmit registers the sign-in callback.
func (lv *LoginView) SetOnSubmit(fn func(email, password string)) {
	lv.onSubmit = fn
}

// ShowBusy renders a signing-in indicator.
func (lv *LoginView) ShowBusy() {
	lv.status.Clear()
	_, _ = fmt.Fprint(lv.status, "Signing in...")
}

// ShowError renders an inline failure message. Session state is unchanged
// by any sign-in failure.
func (lv *LoginView) ShowError(msg string) {
	lv.status.Clear()
	_, _ = fmt.Fprintf(lv.status, "[red]%s[-]", tview.Escape(msg))
}

// Reset clears the password and status line, keeping the email for retry.
func (lv *LoginView) Reset() {
	lv.form.GetFormItemByLabel("Password").(*tview.InputField).SetText("")
	lv.status.Clear()
}

// Form exposes the form for focus management.
func (lv *LoginView) Form() *tview.Form {
	return lv.form
}

// ApplyTheme recolors the view.
func (lv *LoginView) ApplyTheme(theme *ui.Theme) {
	lv.form.SetBackgroundColor(theme.BgColor)
	lv.form.SetBorderColor(theme.BorderColor)
	lv.form.SetTitleColor(theme.TitleColor)
	lv.form.SetLabelColor(theme.FgColor)
	lv.form.SetFieldTextColor(theme.FgColor)
	lv.form.SetButtonTextColor(theme.BgColor)
	lv.form.SetButtonBackgroundColor(theme.BorderColor)
	lv.status.SetBackgroundColor(theme.BgColor)
}
