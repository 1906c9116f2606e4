// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard provides the authenticated console view: entity browsing
// across companies, departments, users, funds, fixed assets and transactions.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/finpanel/finpanel-tui/internal/api"
	"github.com/finpanel/finpanel-tui/internal/session"
	"github.com/finpanel/finpanel-tui/internal/ui/components"
	"github.com/finpanel/finpanel-tui/internal/ui/guard"
	"github.com/finpanel/finpanel-tui/internal/ui/styles"
	"github.com/finpanel/finpanel-tui/internal/util"
)

// fetchTimeout bounds a single listing request.
const fetchTimeout = 30 * time.Second

// Tab identifies an entity tab.
type Tab int

const (
	TabCompanies Tab = iota
	TabDepartments
	TabUsers
	TabFunds
	TabAssets
	TabTransactions
	tabCount
)

// String returns the tab label.
func (t Tab) String() string {
	switch t {
	case TabCompanies:
		return "Companies"
	case TabDepartments:
		return "Departments"
	case TabUsers:
		return "Users"
	case TabFunds:
		return "Funds"
	case TabAssets:
		return "Assets"
	case TabTransactions:
		return "Transactions"
	default:
		return "Unknown"
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

// LogoutRequestedMsg asks the parent to end the session.
type LogoutRequestedMsg struct{}

// fetchedMsg carries the result of a listing request. The generation ties
// the result to the fetch that started it; results from a superseded fetch
// are dropped.
type fetchedMsg struct {
	gen  int
	tab  Tab
	rows []table.Row
	err  error
}

// =============================================================================
// MODEL
// =============================================================================

// Services bundles the API services the dashboard browses.
type Services struct {
	Companies    *api.CompanyService
	Departments  *api.DepartmentService
	Users        *api.UserService
	Funds        *api.FundService
	Assets       *api.AssetService
	Transactions *api.TransactionService
}

// SessionSource exposes the current session for the status bar and for the
// company scope of company-bound listings.
type SessionSource interface {
	Current() *session.Session
	IsExpired() bool
}

// Model is the Bubble Tea model for the dashboard view.
type Model struct {
	theme    *styles.Theme
	services *Services
	sessions SessionSource

	guard  guard.Guard
	notice components.Notice

	tab     Tab
	table   table.Model
	gen     int
	loading bool

	width  int
	height int
}

// New creates the dashboard view.
func New(theme *styles.Theme, services *Services, sessions SessionSource, recheck time.Duration) Model {
	return Model{
		theme:    theme,
		services: services,
		sessions: sessions,
		guard:    guard.New(sessions, recheck),
		notice:   components.NewNotice(theme),
		table:    newTable(theme, TabCompanies, nil),
		loading:  true,
	}
}

// Init starts the session re-check loop and loads the first tab.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.guard.Init(), m.fetch(m.tab))
}

// Deactivate stops the session re-check loop. Call it when the view is
// replaced so stale timers cannot act on the next mount.
func (m *Model) Deactivate() {
	m.guard.Deactivate()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	m.notice = m.notice.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(maxInt(4, m.height-10))
		return m, nil

	case fetchedMsg:
		if msg.gen != m.gen || msg.tab != m.tab {
			// A tab switch or refresh superseded this fetch.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			var cmd tea.Cmd
			m.notice, cmd = m.notice.Show(components.SeverityError,
				fmt.Sprintf("loading %s failed: %v", m.tab, msg.err))
			return m, cmd
		}
		m.table = newTable(m.theme, m.tab, msg.rows)
		m.table.SetHeight(maxInt(4, m.height-10))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab", "right", "l":
			return m.switchTab((m.tab + 1) % tabCount)
		case "shift+tab", "left", "h":
			return m.switchTab((m.tab + tabCount - 1) % tabCount)
		case "1", "2", "3", "4", "5", "6":
			return m.switchTab(Tab(msg.String()[0] - '1'))
		case "r":
			return m.refresh()
		case "ctrl+d":
			return m, func() tea.Msg { return LogoutRequestedMsg{} }
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.guard, cmd = m.guard.Update(msg)
	cmds = append(cmds, cmd)
	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// ShowNotice displays a transient notice, for the parent to surface
// post-login messages such as profile-completion hints.
func (m Model) ShowNotice(severity components.Severity, text string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.notice, cmd = m.notice.Show(severity, text)
	return m, cmd
}

// switchTab changes the active tab and starts its fetch.
func (m Model) switchTab(tab Tab) (Model, tea.Cmd) {
	if tab == m.tab {
		return m, nil
	}
	m.tab = tab
	m.table = newTable(m.theme, tab, nil)
	m.table.SetHeight(maxInt(4, m.height-10))
	return m.refresh()
}

// refresh re-fetches the active tab under a new generation.
func (m Model) refresh() (Model, tea.Cmd) {
	m.gen++
	m.loading = true
	return m, m.fetch(m.tab)
}

// companyID returns the company scope from the session, or 0 when the
// account has no company attached.
func (m Model) companyID() int64 {
	s := m.sessions.Current()
	if s == nil || s.User == nil || s.User.Company == nil {
		return 0
	}
	return s.User.Company.CompanyID
}

// fetch loads the rows for a tab off the UI loop.
func (m Model) fetch(tab Tab) tea.Cmd {
	gen := m.gen
	services := m.services
	companyID := m.companyID()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		rows, err := loadRows(ctx, services, tab, companyID)
		return fetchedMsg{gen: gen, tab: tab, rows: rows, err: err}
	}
}

// loadRows runs the listing request for a tab and shapes the rows.
func loadRows(ctx context.Context, services *Services, tab Tab, companyID int64) ([]table.Row, error) {
	switch tab {
	case TabCompanies:
		companies, err := services.Companies.List(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]table.Row, 0, len(companies))
		for _, c := range companies {
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", c.CompanyID), c.CompanyName, c.Email, c.City, c.Status,
			})
		}
		return rows, nil

	case TabDepartments:
		departments, err := services.Departments.List(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]table.Row, 0, len(departments))
		for _, d := range departments {
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", d.DepartmentID), d.Name, d.Code,
				fmt.Sprintf("%.2f", d.Budget), activeLabel(d.IsActive), companyLabel(d.Company),
			})
		}
		return rows, nil

	case TabUsers:
		users, err := services.Users.List(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]table.Row, 0, len(users))
		for _, u := range users {
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", u.UserID), u.Username, u.FullName, u.Email,
				enabledLabel(u.Enabled), companyLabel(u.Company),
			})
		}
		return rows, nil

	case TabFunds:
		if companyID == 0 {
			return nil, fmt.Errorf("no company attached to this account")
		}
		funds, err := services.Funds.ByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		rows := make([]table.Row, 0, len(funds))
		for _, f := range funds {
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", f.FundID), f.Name, f.FundType,
				fmt.Sprintf("%.2f", f.Balance), activeLabel(f.IsActive),
			})
		}
		return rows, nil

	case TabAssets:
		assets, err := services.Assets.List(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]table.Row, 0, len(assets))
		for _, a := range assets {
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", a.AssetID), a.Name, a.Location, a.SerialNumber,
				a.Status, fmt.Sprintf("%.2f", a.CurrentValue),
			})
		}
		return rows, nil

	case TabTransactions:
		transactions, err := services.Transactions.List(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]table.Row, 0, len(transactions))
		for _, t := range transactions {
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", t.TransactionID), t.TransactionType,
				fmt.Sprintf("%.2f %s", t.Amount, t.Currency), t.TransactionDate,
				util.Truncate(t.Description, 40),
			})
		}
		return rows, nil
	}

	return nil, fmt.Errorf("unknown tab %d", tab)
}

// =============================================================================
// TABLE SHAPES
// =============================================================================

// tabColumns returns the column layout for a tab.
func tabColumns(tab Tab) []table.Column {
	switch tab {
	case TabCompanies:
		return []table.Column{
			{Title: "ID", Width: 6}, {Title: "Name", Width: 28}, {Title: "Email", Width: 26},
			{Title: "City", Width: 14}, {Title: "Status", Width: 10},
		}
	case TabDepartments:
		return []table.Column{
			{Title: "ID", Width: 6}, {Title: "Name", Width: 22}, {Title: "Code", Width: 8},
			{Title: "Budget", Width: 14}, {Title: "Active", Width: 8}, {Title: "Company", Width: 20},
		}
	case TabUsers:
		return []table.Column{
			{Title: "ID", Width: 6}, {Title: "Username", Width: 16}, {Title: "Full Name", Width: 22},
			{Title: "Email", Width: 26}, {Title: "Enabled", Width: 8}, {Title: "Company", Width: 18},
		}
	case TabFunds:
		return []table.Column{
			{Title: "ID", Width: 6}, {Title: "Name", Width: 24}, {Title: "Type", Width: 14},
			{Title: "Balance", Width: 16}, {Title: "Active", Width: 8},
		}
	case TabAssets:
		return []table.Column{
			{Title: "ID", Width: 6}, {Title: "Name", Width: 22}, {Title: "Location", Width: 16},
			{Title: "Serial", Width: 16}, {Title: "Status", Width: 12}, {Title: "Value", Width: 14},
		}
	case TabTransactions:
		return []table.Column{
			{Title: "ID", Width: 6}, {Title: "Type", Width: 10}, {Title: "Amount", Width: 16},
			{Title: "Date", Width: 12}, {Title: "Description", Width: 42},
		}
	default:
		return nil
	}
}

// newTable builds a styled table for a tab.
func newTable(theme *styles.Theme, tab Tab, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(tabColumns(tab)),
		table.WithRows(rows),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Header = theme.TableHeader
	s.Selected = theme.TableSelected
	t.SetStyles(s)
	return t
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.theme.NoticeInfo.Render("Loading..."))
		b.WriteString("\n")
	}
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.notice.Visible() {
		b.WriteString(m.notice.View())
		b.WriteString("\n")
	}

	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render("tab/1-6 switch • r refresh • ctrl+d sign out • q quit"))

	return m.theme.App.Render(b.String())
}

// tabBar renders the tab strip.
func (m Model) tabBar() string {
	out := ""
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf(" %d %s ", int(t)+1, t)
		if t == m.tab {
			out += m.theme.TableSelected.Render(label)
		} else {
			out += m.theme.Label.Render(label)
		}
	}
	return out
}

// statusBar renders the signed-in user and session countdown.
func (m Model) statusBar() string {
	s := m.sessions.Current()
	if s == nil {
		return m.theme.StatusBar.Render("session expired")
	}
	who := "signed in"
	if s.User != nil && s.User.Username != "" {
		who = s.User.Username
	}
	remaining := s.TimeRemaining(time.Now()).Round(time.Second)
	return m.theme.StatusBar.Render(
		who + " " + m.theme.StatusSession.Render(fmt.Sprintf("(session %s)", remaining)),
	)
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "yes"
	}
	return "no"
}

func companyLabel(ref *api.CompanyRef) string {
	if ref == nil {
		return ""
	}
	if ref.CompanyName != "" {
		return ref.CompanyName
	}
	return fmt.Sprintf("#%d", ref.CompanyID)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
