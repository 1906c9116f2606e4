// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the finpanel TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the styled components for the application.
type Theme struct {
	// Layout
	App       lipgloss.Style
	Container lipgloss.Style

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	// Forms
	Label      lipgloss.Style
	FieldFocus lipgloss.Style
	FieldBlur  lipgloss.Style
	Help       lipgloss.Style

	// Tables
	TableHeader   lipgloss.Style
	TableSelected lipgloss.Style
	TableBorder   lipgloss.Style

	// Notices
	NoticeError   lipgloss.Style
	NoticeSuccess lipgloss.Style
	NoticeInfo    lipgloss.Style

	// Status bar
	StatusBar     lipgloss.Style
	StatusSession lipgloss.Style
}

// Dark returns the default dark theme.
func Dark() *Theme {
	return &Theme{
		App:       lipgloss.NewStyle().Padding(1, 2),
		Container: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2),

		Header:      lipgloss.NewStyle().MarginBottom(1),
		HeaderTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),

		Label:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		FieldFocus: lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		FieldBlur:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Help:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),

		TableHeader:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		TableSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		TableBorder:   lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")),

		NoticeError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		NoticeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		NoticeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("81")),

		StatusBar:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		StatusSession: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
}

// Light returns the light theme.
func Light() *Theme {
	t := Dark()
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25"))
	t.Label = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	t.FieldFocus = lipgloss.NewStyle().Foreground(lipgloss.Color("25"))
	t.NoticeError = lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true)
	t.NoticeSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))
	t.NoticeInfo = lipgloss.NewStyle().Foreground(lipgloss.Color("25"))
	return t
}

// ForName returns the theme matching the config value, defaulting to dark.
func ForName(name string) *Theme {
	if name == "light" {
		return Light()
	}
	return Dark()
}
