package ui

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
)

// Theme holds the colors every view draws with.
type Theme struct {
	BgColor           tcell.Color
	FgColor           tcell.Color
	BorderColor       tcell.Color
	BorderFocusColor  tcell.Color
	TableHeaderFg     tcell.Color
	TableHeaderBg     tcell.Color
	TableCursorFg     tcell.Color
	TableCursorBg     tcell.Color
	CrumbActiveFg     tcell.Color
	CrumbActiveBg     tcell.Color
	CrumbInactiveFg   tcell.Color
	CrumbInactiveBg   tcell.Color
	MenuKeyColor      tcell.Color
	NumericKeyColor   tcell.Color
	TitleColor        tcell.Color
	CounterColor      tcell.Color
	FlashInfoColor    tcell.Color
	FlashWarnColor    tcell.Color
	FlashErrColor     tcell.Color
	PromptBorderColor tcell.Color

	// Chat colors.
	MineColor   tcell.Color
	TheirsColor tcell.Color
	TypingColor tcell.Color
	MutedColor  tcell.Color
}

var themes = map[string]func() *Theme{
	"dark":  DefaultTheme,
	"light": LightTheme,
}

// DefaultTheme is the dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:           tcell.ColorBlack,
		FgColor:           tcell.ColorCadetBlue,
		BorderColor:       tcell.ColorDodgerBlue,
		BorderFocusColor:  tcell.ColorLightSkyBlue,
		TableHeaderFg:     tcell.ColorWhite,
		TableHeaderBg:     tcell.ColorBlack,
		TableCursorFg:     tcell.ColorBlack,
		TableCursorBg:     tcell.ColorAqua,
		CrumbActiveFg:     tcell.ColorBlack,
		CrumbActiveBg:     tcell.ColorOrange,
		CrumbInactiveFg:   tcell.ColorBlack,
		CrumbInactiveBg:   tcell.ColorAqua,
		MenuKeyColor:      tcell.ColorDodgerBlue,
		NumericKeyColor:   tcell.ColorFuchsia,
		TitleColor:        tcell.ColorFuchsia,
		CounterColor:      tcell.ColorPapayaWhip,
		FlashInfoColor:    tcell.ColorNavajoWhite,
		FlashWarnColor:    tcell.ColorOrange,
		FlashErrColor:     tcell.ColorOrangeRed,
		PromptBorderColor: tcell.ColorDodgerBlue,
		MineColor:         tcell.ColorLightGreen,
		TheirsColor:       tcell.ColorLightSkyBlue,
		TypingColor:       tcell.ColorGray,
		MutedColor:        tcell.ColorDimGray,
	}
}

// LightTheme suits terminals with a light background.
func LightTheme() *Theme {
	t := DefaultTheme()
	t.BgColor = tcell.ColorWhite
	t.FgColor = tcell.ColorDarkSlateGray
	t.BorderColor = tcell.ColorSteelBlue
	t.BorderFocusColor = tcell.ColorNavy
	t.TableHeaderFg = tcell.ColorBlack
	t.TableHeaderBg = tcell.ColorWhite
	t.TableCursorFg = tcell.ColorWhite
	t.TableCursorBg = tcell.ColorSteelBlue
	t.CrumbActiveFg = tcell.ColorWhite
	t.CrumbActiveBg = tcell.ColorDarkOrange
	t.CrumbInactiveFg = tcell.ColorWhite
	t.CrumbInactiveBg = tcell.ColorSteelBlue
	t.MenuKeyColor = tcell.ColorNavy
	t.NumericKeyColor = tcell.ColorPurple
	t.TitleColor = tcell.ColorPurple
	t.CounterColor = tcell.ColorSaddleBrown
	t.FlashInfoColor = tcell.ColorDarkGreen
	t.FlashWarnColor = tcell.ColorDarkOrange
	t.FlashErrColor = tcell.ColorFireBrick
	t.PromptBorderColor = tcell.ColorNavy
	t.MineColor = tcell.ColorDarkGreen
	t.TheirsColor = tcell.ColorNavy
	t.TypingColor = tcell.ColorGray
	t.MutedColor = tcell.ColorGray
	return t
}

// ThemeByName returns the named theme. An empty name is the dark theme.
func ThemeByName(name string) (*Theme, error) {
	if name == "" {
		return DefaultTheme(), nil
	}
	fn, ok := themes[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (have %v)", name, ThemeNames())
	}
	return fn(), nil
}

// ThemeNames lists the available themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
