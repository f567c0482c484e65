package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the console. Two variants exist; the
// dark-mode toggle switches between them at runtime.
type Theme struct {
	Dark          bool
	BgColor       tcell.Color
	FgColor       tcell.Color
	BorderColor   tcell.Color
	TitleColor    tcell.Color
	TableHeaderFg tcell.Color
	TableCursorFg tcell.Color
	TableCursorBg tcell.Color
	UnreadColor   tcell.Color
	WarnFg        tcell.Color
	WarnBg        tcell.Color
	ErrorColor    tcell.Color
	MutedColor    tcell.Color
}

// LightTheme returns the default light palette.
func LightTheme() *Theme {
	return &Theme{
		Dark:          false,
		BgColor:       tcell.ColorWhite,
		FgColor:       tcell.ColorBlack,
		BorderColor:   tcell.ColorDarkBlue,
		TitleColor:    tcell.ColorDarkBlue,
		TableHeaderFg: tcell.ColorDarkBlue,
		TableCursorFg: tcell.ColorWhite,
		TableCursorBg: tcell.ColorDarkBlue,
		UnreadColor:   tcell.ColorBlue,
		WarnFg:        tcell.ColorBlack,
		WarnBg:        tcell.ColorOrange,
		ErrorColor:    tcell.ColorRed,
		MutedColor:    tcell.ColorGray,
	}
}

// DarkTheme returns the dark palette.
func DarkTheme() *Theme {
	return &Theme{
		Dark:          true,
		BgColor:       tcell.ColorBlack,
		FgColor:       tcell.ColorLightGray,
		BorderColor:   tcell.ColorDodgerBlue,
		TitleColor:    tcell.ColorAqua,
		TableHeaderFg: tcell.ColorAqua,
		TableCursorFg: tcell.ColorBlack,
		TableCursorBg: tcell.ColorAqua,
		UnreadColor:   tcell.ColorGreen,
		WarnFg:        tcell.ColorBlack,
		WarnBg:        tcell.ColorOrange,
		ErrorColor:    tcell.ColorOrangeRed,
		MutedColor:    tcell.ColorDarkGray,
	}
}

// ForMode picks the theme matching the persisted dark-mode preference.
func ForMode(dark bool) *Theme {
	if dark {
		return DarkTheme()
	}
	return LightTheme()
}
