package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/salesdash/internal/month"
)

// MonthSelectedMsg is emitted once the user confirms a month.
type MonthSelectedMsg struct {
	Month month.Month
}

// MonthPicker is a reusable single-select form over the twelve months.
type MonthPicker struct {
	form     *huh.Form
	selected *month.Month
}

func NewMonthPicker(initial month.Month) MonthPicker {
	selected := new(initial)
	title := cases.Title(language.English)

	opts := make([]huh.Option[month.Month], 0, 12)
	for _, m := range month.All() {
		opts = append(opts, huh.NewOption(title.String(m.Name()), m))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[month.Month]().
				Title("Month").
				Options(opts...).
				Value(selected),
		),
	).WithWidth(30).WithShowHelp(false)

	return MonthPicker{form: form, selected: selected}
}

func (p MonthPicker) Init() tea.Cmd {
	return p.form.Init()
}

func (p MonthPicker) Update(msg tea.Msg) (MonthPicker, tea.Cmd) {
	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State != huh.StateCompleted {
		return p, cmd
	}

	m := *p.selected

	return p, tea.Batch(cmd, func() tea.Msg {
		return MonthSelectedMsg{Month: m}
	})
}

func (p MonthPicker) View() string {
	return p.form.View() + "\n(Enter to select, Esc to back)"
}

// displayName renders a month for headings, e.g. "March".
func displayName(m month.Month) string {
	return cases.Title(language.English).String(m.Name())
}
