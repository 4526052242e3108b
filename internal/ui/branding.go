package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

const AppName = "nextech"

// LogoLines is the block letter logo shown by the banner.
var LogoLines = []string{
	"▄▄  ▄ ▄▄▄▄ ▄   ▄ ▄▄▄▄▄ ▄▄▄▄  ▄▄▄ ▄  ▄",
	"█▀█ █ █▄▄   ▀▄▀    █   █▄▄  █    █▄▄█",
	"█  ▀█ █▄▄▄ ▄▀ ▀▄   █   █▄▄▄ ▀▄▄▄ █  █",
}

const CompactLogo = `nextech ›`

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6600"),
	lipgloss.Color("#FF8533"),
	lipgloss.Color("#FFA366"),
}

var (
	PrimaryColor   = lipgloss.Color("#FF6600") // orange, the HN header
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#FFA366")

	TextColor    = lipgloss.Color("#EAEAEA")
	MutedColor   = lipgloss.Color("#94A3B8")
	ErrorColor   = lipgloss.Color("#EF4444")
	WarnColor    = lipgloss.Color("#FFE66D")
	SuccessColor = lipgloss.Color("#10B981")
)

var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	StoryTitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	SelectedStoryStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Bold(true)

	URLStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	IndexStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 1)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	WarnMessageStyle = lipgloss.NewStyle().
				Foreground(WarnColor)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// RenderBanner returns the startup banner with the version tagline.
func RenderBanner(version string) string {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)
	lines[len(LogoLines)] = ""

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("Hacker News new stories %s", versionTag))
	} else {
		lines = append(lines, "Hacker News new stories")
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}

		colorIdx := i % len(BannerColors)
		style := lipgloss.NewStyle().
			Foreground(BannerColors[colorIdx]).
			Bold(i < len(LogoLines))

		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	borderStyle := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1)

	banner := borderStyle.Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))

	separator := lipgloss.NewStyle().
		Foreground(AccentColor).
		Render("◆ ◇ ◆ ◇ ◆")

	centered := lipgloss.NewStyle().Width(70).Align(lipgloss.Center)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		centered.Render(banner),
		centered.MarginBottom(1).Render(separator),
	)
}
