// finpanel TUI - terminal console for the finpanel management platform.
//
// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finpanel/finpanel-tui/internal/api"
	"github.com/finpanel/finpanel-tui/internal/cli"
	"github.com/finpanel/finpanel-tui/internal/ui"
	"github.com/finpanel/finpanel-tui/internal/ui/dashboard"
	"github.com/finpanel/finpanel-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(args))
	case cli.CmdSSO:
		exitOnError(cli.HandleSSO(args))
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout(args))
	case cli.CmdStatus:
		exitOnError(cli.HandleStatus(args))
	case cli.CmdAudit:
		exitOnError(cli.HandleAudit(args))
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the application services and starts the terminal interface.
func runTUI(args cli.Args) {
	env, err := cli.Setup(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer env.Close()

	theme := styles.ForName(env.Config.UI.Theme)

	services := &dashboard.Services{
		Companies:    api.NewCompanyService(env.Client),
		Departments:  api.NewDepartmentService(env.Client),
		Users:        api.NewUserService(env.Client),
		Funds:        api.NewFundService(env.Client),
		Assets:       api.NewAssetService(env.Client),
		Transactions: api.NewTransactionService(env.Client),
	}

	app := ui.NewApp(ui.Config{
		Theme:        theme,
		Manager:      env.Manager,
		Services:     services,
		CallbackAddr: env.Config.Session.CallbackAddr,
		Recheck:      env.Config.RecheckInterval(),
	})

	p := tea.NewProgram(app, tea.WithAltScreen())

	// A server-side rejection can surface on any call; route it into the
	// program loop so the active view can navigate back to login.
	env.Manager.SetRedirectHandler(func() {
		p.Send(ui.SessionRejectedMsg{})
	})

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running finpanel: %v\n", err)
		os.Exit(1)
	}
}
