// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - Session commands: login, sso, logout, status, audit.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/finpanel/finpanel-tui/internal/api"
	"github.com/finpanel/finpanel-tui/internal/audit"
	"github.com/finpanel/finpanel-tui/internal/callback"
	"github.com/finpanel/finpanel-tui/internal/config"
	"github.com/finpanel/finpanel-tui/internal/session"
)

// Env bundles the wired application services for command handlers.
type Env struct {
	Config  *config.Config
	Client  *api.Client
	Manager *session.Manager
	Trail   *audit.Trail
}

// Setup loads configuration and wires the client, session manager and audit
// trail. The audit trail is optional; a failure to open it is logged and the
// rest of the environment still works.
func Setup(args Args) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if args.APIURL != "" {
		cfg.Server.BaseURL = args.APIURL
	}
	if args.Theme != "" {
		cfg.UI.Theme = args.Theme
	}

	client := api.NewClient(cfg.Server.BaseURL).
		WithTimeout(cfg.RequestTimeout()).
		WithRateLimit(cfg.Server.RateLimitPerSec)

	storePath, err := cfg.SessionStorePath()
	if err != nil {
		return nil, err
	}
	manager := session.NewManager(client, session.NewStore(storePath))

	env := &Env{Config: cfg, Client: client, Manager: manager}

	auditPath, err := cfg.AuditDBPath()
	if err == nil {
		trail, openErr := audit.Open(auditPath)
		if openErr != nil {
			log.Printf("audit: trail unavailable: %v", openErr)
		} else {
			env.Trail = trail
			manager.SetRecorder(trail)
		}
	}

	manager.InitializeFromStorage()
	return env, nil
}

// Close releases the environment resources.
func (e *Env) Close() {
	if e.Trail != nil {
		if err := e.Trail.Close(); err != nil {
			log.Printf("audit: close: %v", err)
		}
	}
}

// HandleLogin signs in with username and password.
func HandleLogin(args Args) error {
	env, err := Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	username := args.Username
	if username == "" {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := env.Manager.LoginWithPassword(ctx, username, password, args.RememberMe)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Printf("Signed in as %s. Session valid until %s.\n",
		username, s.ExpiresAt().Local().Format(time.RFC1123))
	return nil
}

// HandleSSO signs in through the identity provider using the loopback
// redirect listener.
func HandleSSO(args Args) error {
	env, err := Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	url, err := env.Manager.BeginSSOExchange(ctx)
	if err != nil {
		return fmt.Errorf("fetch provider URL: %w", err)
	}

	fmt.Println("Open this URL in your browser to continue:")
	fmt.Println("  " + url)
	fmt.Println("Waiting for the redirect...")

	listener := callback.NewListener(env.Config.Session.CallbackAddr)
	result, err := listener.Wait(ctx)
	if err != nil {
		return fmt.Errorf("await redirect: %w", err)
	}

	s, err := env.Manager.CompleteSSOExchange(ctx, result.Code, result.State)
	if err != nil {
		return fmt.Errorf("code exchange failed: %w", err)
	}

	fmt.Printf("Signed in. Session valid until %s.\n",
		s.ExpiresAt().Local().Format(time.RFC1123))
	if s.NewUserCreated || s.NewCompanyCreated {
		fmt.Println("Your account was just created; please complete your profile.")
	}
	return nil
}

// HandleLogout signs out and clears the stored session.
func HandleLogout(args Args) error {
	env, err := Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := env.Manager.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Println("Signed out.")
	return nil
}

// statusOutput is the JSON shape of the status command.
type statusOutput struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	ExpiresAt     string `json:"expiresAt,omitempty"`
	RemainingSecs int64  `json:"remainingSecs,omitempty"`
}

// HandleStatus shows the stored session state. No network call is made; the
// check is against the locally persisted record.
func HandleStatus(args Args) error {
	env, err := Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	s := env.Manager.Current()

	if args.JSON {
		out := statusOutput{Authenticated: s != nil}
		if s != nil {
			if s.User != nil {
				out.Username = s.User.Username
			}
			out.ExpiresAt = s.ExpiresAt().UTC().Format(time.RFC3339)
			out.RemainingSecs = int64(s.TimeRemaining(time.Now()).Seconds())
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	if s == nil {
		fmt.Println("Not signed in.")
		return nil
	}

	who := "unknown user"
	if s.User != nil && s.User.Username != "" {
		who = s.User.Username
	}
	fmt.Printf("Signed in as %s.\n", who)
	fmt.Printf("Session expires %s (%s remaining).\n",
		s.ExpiresAt().Local().Format(time.RFC1123),
		s.TimeRemaining(time.Now()).Round(time.Second))
	return nil
}

// HandleAudit prints recent session lifecycle events.
func HandleAudit(args Args) error {
	env, err := Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	if env.Trail == nil {
		return fmt.Errorf("audit trail unavailable")
	}

	limit := 20
	if args.Subcommand != "" {
		n, err := strconv.Atoi(args.Subcommand)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid count: %s", args.Subcommand)
		}
		limit = n
	}

	events, err := env.Trail.Recent(limit)
	if err != nil {
		return fmt.Errorf("read audit trail: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No session events recorded.")
		return nil
	}

	for _, e := range events {
		line := fmt.Sprintf("%s  %-10s %s", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Event, e.Detail)
		fmt.Println(strings.TrimRight(line, " "))
	}
	return nil
}

// readPassword reads a password without echo when stdin is a terminal, and
// falls back to a plain line read otherwise (pipes, CI).
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
