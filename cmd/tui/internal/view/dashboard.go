package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/salesdash/internal/month"
	"github.com/MrJamesThe3rd/salesdash/internal/product"
)

const dashboardBarWidth = 30

type dashboardState int

const (
	dashboardStatePick dashboardState = iota
	dashboardStateReady
)

// DashboardModel shows statistics, the price histogram and the category
// breakdown for one month.
type DashboardModel struct {
	CommonModel
	svc *product.Service

	state  dashboardState
	picker MonthPicker
	month  month.Month

	data    *product.Combined
	loading bool
	err     error
}

func NewDashboardModel(svc *product.Service) DashboardModel {
	return DashboardModel{
		svc:    svc,
		picker: NewMonthPicker(month.Default),
		month:  month.Default,
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MonthSelectedMsg:
		m.month = msg.Month
		m.state = dashboardStateReady
		m.loading = true

		return m, m.loadCmd()

	case dashboardLoadedMsg:
		m.loading = false
		m.data, m.err = msg.data, msg.err

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.state == dashboardStatePick {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "m":
			m.state = dashboardStatePick
			m.picker = NewMonthPicker(m.month)

			return m, m.picker.Init()
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.state == dashboardStatePick {
		return style.Render("Sales Dashboard\n\n" + m.picker.View())
	}

	if m.loading {
		return style.Render("Loading " + displayName(m.month) + "...")
	}

	if m.err != nil {
		return style.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(r: retry | m: month | Esc: back)")
	}

	if m.data == nil {
		return style.Render("No data.")
	}

	panel := lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))

	stats := m.data.Statistics
	statsView := panel.Render(fmt.Sprintf(
		"Statistics\n\nTotal sale:     %d\nSold items:     %d\nNot sold items: %d",
		stats.FlooredSaleAmount(), stats.SoldItems, stats.NotSoldItems,
	))

	labels := make([]string, len(m.data.PriceHistogram))
	counts := make([]int64, len(m.data.PriceHistogram))

	for i, b := range m.data.PriceHistogram {
		labels[i], counts[i] = b.Range.Label, b.Count
	}

	histView := panel.Render("Price ranges\n\n" + renderBars(labels, counts, dashboardBarWidth))

	labels = make([]string, len(m.data.Categories))
	counts = make([]int64, len(m.data.Categories))

	for i, c := range m.data.Categories {
		labels[i], counts[i] = c.Category, c.Count
	}

	catView := panel.Render("Categories\n\n" + renderBars(labels, counts, dashboardBarWidth))

	content := lipgloss.JoinVertical(lipgloss.Left,
		"Sales Dashboard: "+activeStyle(displayName(m.month)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, statsView, " ", catView),
		histView,
		lipgloss.NewStyle().Faint(true).Render("m: month | r: refresh | Esc: back"),
	)

	return style.Render(content)
}

type dashboardLoadedMsg struct {
	data *product.Combined
	err  error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	selected := m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		data, err := m.svc.Combined(ctx, product.ListParams{Month: selected})

		return dashboardLoadedMsg{data: data, err: err}
	}
}
