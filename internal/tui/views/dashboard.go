package views

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/miccroten/mtadmin/internal/inbox"
	"github.com/miccroten/mtadmin/internal/tui/model"
	"github.com/miccroten/mtadmin/internal/tui/ui"
	"github.com/rivo/tview"
)

// DashboardView shows the inbox: a stats row, an optional inactivity
// warning banner, a filter field and the message table.
type DashboardView struct {
	*tview.Flex
	vm *model.ViewModel

	stats  *tview.TextView
	banner *tview.TextView
	filter *tview.InputField
	table  *tview.Table

	theme       *ui.Theme
	bannerShown bool

	onFilterDone func()
	onActivity   func()
}

// NewDashboardView creates the dashboard bound to a view model.
func NewDashboardView(vm *model.ViewModel) *DashboardView {
	dv := &DashboardView{vm: vm, theme: ui.LightTheme()}

	dv.stats = tview.NewTextView().SetDynamicColors(true)
	dv.stats.SetBorder(true).SetTitle(" Overview ")

	dv.banner = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	dv.filter = tview.NewInputField().
		SetLabel(" / ").
		SetFieldWidth(0).
		SetChangedFunc(func(text string) {
			vm.SetFilter(text)
			dv.renderTable()
		})
	dv.filter.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			dv.filter.SetText("")
		}
		if dv.onFilterDone != nil {
			dv.onFilterDone()
		}
	})

	dv.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	dv.table.SetBorder(true).SetTitle(" Messages ")

	dv.Flex = tview.NewFlex().SetDirection(tview.FlexRow)
	dv.layout()
	return dv
}

func (dv *DashboardView) layout() {
	dv.Flex.Clear()
	dv.Flex.AddItem(dv.stats, 3, 0, false)
	if dv.bannerShown {
		dv.Flex.AddItem(dv.banner, 1, 0, false)
	}
	dv.Flex.AddItem(dv.filter, 1, 0, false)
	dv.Flex.AddItem(dv.table, 0, 1, true)
}

// Refresh re-renders stats and the message table from the view model.
func (dv *DashboardView) Refresh() {
	dv.renderStats()
	dv.renderTable()
}

func (dv *DashboardView) renderStats() {
	s := dv.vm.Stats()
	dv.stats.Clear()
	_, _ = fmt.Fprintf(dv.stats,
		" Senders: [::b]%d[-:-:-]   Messages: [::b]%d[-:-:-]   Unread: [::b]%d[-:-:-]",
		s.UniqueSenders, s.TotalMessages, s.UnreadMessages)
}

func (dv *DashboardView) renderTable() {
	msgs := dv.vm.VisibleMessages()

	row, _ := dv.table.GetSelection()
	dv.table.Clear()

	headers := []string{"", "From", "Email", "Subject", "Received"}
	for col, h := range headers {
		cell := tview.NewTableCell(h).
			SetTextColor(dv.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false)
		if col == 3 {
			cell.SetExpansion(1)
		}
		dv.table.SetCell(0, col, cell)
	}

	for i, m := range msgs {
		fg := dv.theme.FgColor
		marker := " "
		if !m.Read {
			fg = dv.theme.UnreadColor
			marker = "●"
		}
		subject := m.Subject
		if subject == "" {
			subject = truncate(m.Body, 60)
		}
		cells := []string{
			marker,
			m.Name,
			m.Email,
			subject,
			m.CreatedAt.Local().Format("2006-01-02 15:04"),
		}
		for col, text := range cells {
			cell := tview.NewTableCell(text).
				SetTextColor(fg).
				SetReference(m.ID)
			if col == 3 {
				cell.SetExpansion(1)
			}
			dv.table.SetCell(i+1, col, cell)
		}
	}

	if row >= dv.table.GetRowCount() {
		row = dv.table.GetRowCount() - 1
	}
	if row < 1 {
		row = 1
	}
	if dv.table.GetRowCount() > 1 {
		dv.table.Select(row, 0)
	}
}

// SelectedMessage returns the message under the cursor, if any.
func (dv *DashboardView) SelectedMessage() (inbox.Message, bool) {
	row, _ := dv.table.GetSelection()
	if row < 1 || row >= dv.table.GetRowCount() {
		return inbox.Message{}, false
	}
	ref := dv.table.GetCell(row, 0).GetReference()
	id, ok := ref.(int64)
	if !ok {
		return inbox.Message{}, false
	}
	for _, m := range dv.vm.VisibleMessages() {
		if m.ID == id {
			return m, true
		}
	}
	return inbox.Message{}, false
}

// ShowWarning displays the inactivity banner with the seconds remaining
// until automatic sign-out.
func (dv *DashboardView) ShowWarning(secondsLeft int) {
	dv.banner.Clear()
	_, _ = fmt.Fprintf(dv.banner,
		"[:%s:b] Session inactive: signing out in %ss [-:-:-]",
		colorTag(dv.theme.WarnBg), strconv.Itoa(secondsLeft))
	dv.banner.SetTextColor(dv.theme.WarnFg)
	if !dv.bannerShown {
		dv.bannerShown = true
		dv.layout()
	}
}

// HideWarning removes the inactivity banner.
func (dv *DashboardView) HideWarning() {
	if dv.bannerShown {
		dv.bannerShown = false
		dv.layout()
	}
}

// Filter exposes the filter field for focus handling.
func (dv *DashboardView) Filter() *tview.InputField { return dv.filter }

// Table exposes the message table for focus handling.
func (dv *DashboardView) Table() *tview.Table { return dv.table }

// SetOnFilterDone registers the callback fired when the filter field is
// confirmed or escaped.
func (dv *DashboardView) SetOnFilterDone(fn func()) { dv.onFilterDone = fn }

// ApplyTheme recolors the dashboard and re-renders.
func (dv *DashboardView) ApplyTheme(theme *ui.Theme) {
	dv.theme = theme
	dv.stats.SetBackgroundColor(theme.BgColor)
	dv.stats.SetBorderColor(theme.BorderColor)
	dv.stats.SetTitleColor(theme.TitleColor)
	dv.banner.SetBackgroundColor(theme.WarnBg)
	dv.filter.SetFieldBackgroundColor(theme.BgColor)
	dv.filter.SetFieldTextColor(theme.FgColor)
	dv.filter.SetLabelColor(theme.MutedColor)
	dv.filter.SetBackgroundColor(theme.BgColor)
	dv.table.SetBackgroundColor(theme.BgColor)
	dv.table.SetBorderColor(theme.BorderColor)
	dv.table.SetTitleColor(theme.TitleColor)
	dv.table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	dv.Refresh()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func colorTag(c tcell.Color) string {
	return fmt.Sprintf("#%06x", c.Hex())
}
