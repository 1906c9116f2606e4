// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for finpanel.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdSSO
	CmdLogout
	CmdStatus
	CmdAudit
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	APIURL  string
	Theme   string
	JSON    bool
	Verbose bool

	// Command-specific
	Username   string
	RememberMe bool
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `finpanel - terminal console for the finpanel platform

Usage:
  finpanel                    Start the TUI (default)
  finpanel login              Sign in with username and password
    --user <name>             Username (prompted when omitted)
    --remember                Request an extended session
  finpanel sso                Sign in through the identity provider
  finpanel logout             Sign out and clear the stored session
  finpanel status             Show the stored session state
    --json                    Output in JSON format
  finpanel audit [n]          Show the last n session events (default 20)
  finpanel version            Show version information
  finpanel help               Show this help

Global flags:
  --api-url <url>             Override the API base URL
  --theme <dark|light>        Select the color theme

Environment:
  FINPANEL_API_URL            API base URL
  FINPANEL_SESSION_PATH       Session store location
  FINPANEL_THEME              Color theme
`

// Parse reads os.Args and routes to a command.
func Parse() (Command, Args) {
	raw := os.Args[1:]
	args := parseFlags(raw)

	if len(args.Raw) == 0 {
		return CmdTUI, args
	}

	cmd := args.Raw[0]
	if len(args.Raw) > 1 {
		args.Subcommand = args.Raw[1]
	}

	switch cmd {
	case "login":
		return CmdLogin, args
	case "sso":
		return CmdSSO, args
	case "logout":
		return CmdLogout, args
	case "status", "s":
		return CmdStatus, args
	case "audit":
		return CmdAudit, args
	case "version", "--version", "-v":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	case "tui":
		return CmdTUI, args
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// parseFlags extracts global and command flags, leaving positionals in Raw.
func parseFlags(raw []string) Args {
	var args Args
	i := 0
	for i < len(raw) {
		arg := raw[i]

		value := func() string {
			if eq := strings.IndexByte(arg, '='); eq >= 0 {
				return arg[eq+1:]
			}
			if i+1 < len(raw) {
				i++
				return raw[i]
			}
			return ""
		}

		switch {
		case arg == "--remember":
			args.RememberMe = true
		case arg == "--json":
			args.JSON = true
		case arg == "--verbose":
			args.Verbose = true
		case arg == "--user" || strings.HasPrefix(arg, "--user="):
			args.Username = value()
		case arg == "--api-url" || strings.HasPrefix(arg, "--api-url="):
			args.APIURL = value()
		case arg == "--theme" || strings.HasPrefix(arg, "--theme="):
			args.Theme = value()
		default:
			args.Raw = append(args.Raw, arg)
		}
		i++
	}
	return args
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}

// HandleVersion prints version information.
func HandleVersion(args Args) {
	if args.JSON {
		fmt.Printf("{\"version\":%q,\"commit\":%q,\"built\":%q}\n", Version, GitCommit, BuildDate)
		return
	}
	fmt.Printf("finpanel %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
