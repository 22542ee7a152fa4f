package tui

import "github.com/charmbracelet/lipgloss"

var (
	Green    = lipgloss.Color("#2ECC71")
	Blue     = lipgloss.Color("#3498DB")
	Red      = lipgloss.Color("#E74C3C")
	Amber    = lipgloss.Color("#F1C40F")
	MidGray  = lipgloss.Color("#6c6c7e")
	White    = lipgloss.Color("#e0e0e0")
	DarkGray = lipgloss.Color("#1a1a2e")

	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(MidGray)

	InputBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Blue).
				Padding(0, 1)

	// Banners
	SuccessBannerStyle = lipgloss.NewStyle().
				Foreground(DarkGray).
				Background(Green).
				Bold(true).
				Padding(0, 1)

	InfoBannerStyle = lipgloss.NewStyle().
			Foreground(DarkGray).
			Background(Blue).
			Bold(true).
			Padding(0, 1)

	ErrorBannerStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(Red).
				Bold(true).
				Padding(0, 1)

	NoteTitleStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	ListHeaderStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	ListItemStyle = lipgloss.NewStyle().
			Foreground(White)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(Blue).
			Italic(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Amber)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MidGray)
)
