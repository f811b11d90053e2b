// Package ui provides the terminal output toolkit for the CLI: the shared
// lipgloss color palette and styles, a width-aware Printer for headers,
// result boxes and tables, a step-based progress display, and the
// dangerous-operation confirmation prompt.
//
// Interactive full-screen views (the packet monitor) live in their own
// packages and pull their colors from here so the whole CLI reads as one
// program.
package ui
