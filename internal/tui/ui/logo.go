package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

var logoArt = []string{
	` ╔═╗╦ ╦╔═╗╔╦╗`,
	` ║  ╠═╣╠═╣ ║ `,
	` ╚═╝╩ ╩╩ ╩ ╩ `,
}

// Logo is the header's ASCII art and name.
type Logo struct {
	*tview.TextView
}

// NewLogo creates the logo panel.
func NewLogo(theme *Theme) *Logo {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(1, 0, 1, 0)

	var b strings.Builder
	for _, line := range logoArt {
		fmt.Fprintf(&b, "[%s::b]%s[-:-:-]\n", ColorName(theme.TitleColor), line)
	}
	fmt.Fprintf(&b, "[%s]chatterm[-:-:-]", ColorName(theme.FgColor))
	tv.SetText(b.String())
	return &Logo{TextView: tv}
}
