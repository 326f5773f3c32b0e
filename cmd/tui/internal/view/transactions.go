package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/salesdash/internal/month"
	"github.com/MrJamesThe3rd/salesdash/internal/product"
)

const transactionsPerPage = 10

type transactionsState int

const (
	transactionsStatePick transactionsState = iota
	transactionsStateBrowse
	transactionsStateSearch
)

// TransactionsModel is a searchable, paged table of one month's transactions.
type TransactionsModel struct {
	CommonModel
	svc *product.Service

	state  transactionsState
	picker MonthPicker
	table  table.Model
	search textinput.Model

	params  product.ListParams
	txs     []*product.Transaction
	loading bool
	err     error
}

func NewTransactionsModel(svc *product.Service) TransactionsModel {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Date", Width: 12},
		{Title: "Title", Width: 36},
		{Title: "Category", Width: 18},
		{Title: "Price", Width: 10},
		{Title: "Sold", Width: 5},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(transactionsPerPage+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	si := textinput.New()
	si.Placeholder = "title, description or price"
	si.Prompt = "Search: "
	si.CharLimit = 100
	si.Width = 40

	return TransactionsModel{
		svc:    svc,
		picker: NewMonthPicker(month.Default),
		table:  t,
		search: si,
		params: product.ListParams{
			Month:   month.Default,
			Page:    product.DefaultPage,
			PerPage: transactionsPerPage,
		},
	}
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MonthSelectedMsg:
		m.params.Month = msg.Month
		m.params.Page = product.DefaultPage
		m.state = transactionsStateBrowse
		m.table.Focus()
		m.loading = true

		return m, m.loadCmd()

	case transactionsLoadedMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.txs = msg.txs
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil
	}

	switch m.state {
	case transactionsStatePick:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			if m.txs == nil {
				return m, Back
			}

			m.state = transactionsStateBrowse
			m.table.Focus()

			return m, nil
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	case transactionsStateSearch:
		return m.updateSearch(msg)
	}

	return m.updateBrowse(msg)
}

func (m TransactionsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "/":
			m.state = transactionsStateSearch
			m.table.Blur()
			m.search.SetValue(m.params.Search)
			m.search.CursorEnd()

			return m, m.search.Focus()
		case "n", "right":
			if len(m.txs) < m.params.PerPage {
				return m, nil
			}

			m.params.Page++
			m.loading = true

			return m, m.loadCmd()
		case "p", "left":
			if m.params.Page <= 1 {
				return m, nil
			}

			m.params.Page--
			m.loading = true

			return m, m.loadCmd()
		case "m":
			m.state = transactionsStatePick
			m.table.Blur()
			m.picker = NewMonthPicker(m.params.Month)

			return m, m.picker.Init()
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			m.params.Search = strings.TrimSpace(m.search.Value())
			m.params.Page = product.DefaultPage
			m.state = transactionsStateBrowse
			m.search.Blur()
			m.table.Focus()
			m.loading = true

			return m, m.loadCmd()
		case tea.KeyEsc:
			m.state = transactionsStateBrowse
			m.search.Blur()
			m.table.Focus()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m TransactionsModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.state == transactionsStatePick {
		return style.Render("Transactions\n\n" + m.picker.View())
	}

	search := m.params.Search
	if search == "" {
		search = "none"
	}

	header := fmt.Sprintf(
		"Month: %s | Search: %s | Page: %s",
		activeStyle(displayName(m.params.Month)),
		activeStyle(search),
		activeStyle(fmt.Sprint(m.params.Page)),
	)

	var body string

	switch {
	case m.loading:
		body = "Loading transactions..."
	case m.err != nil:
		body = errorStyle(fmt.Sprintf("Error: %v", m.err))
	case len(m.txs) == 0:
		body = "No transactions found."
	default:
		body = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View())
	}

	footer := "/: search | n/p: next/prev page | m: month | r: refresh | Esc: back"
	if m.state == transactionsStateSearch {
		footer = m.search.View() + "\n(Enter to apply, Esc to cancel)"
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		body,
		"",
		lipgloss.NewStyle().Faint(true).Render(footer),
	))
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		sold := "no"
		if tx.Sold {
			sold = "yes"
		}

		rows = append(rows, table.Row{
			fmt.Sprint(tx.ID),
			FormatDate(tx.DateOfSale),
			tx.Title,
			tx.Category,
			FormatPrice(tx.Price),
			sold,
		})
	}

	m.table.SetRows(rows)
	m.table.GotoTop()
}

type transactionsLoadedMsg struct {
	txs []*product.Transaction
	err error
}

func (m TransactionsModel) loadCmd() tea.Cmd {
	params := m.params

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		page, err := m.svc.List(ctx, params)
		if err != nil {
			return transactionsLoadedMsg{err: err}
		}

		return transactionsLoadedMsg{txs: page.Transactions}
	}
}
