package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the MathView banner with the version below it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"  __  __       _   _ __     ___               ", "#818cf8"},
		{" |  \\/  | __ _| |_| |\\ \\   / (_) _____      __", "#a78bfa"},
		{" | |\\/| |/ _` | __| '_ \\ \\ / /| |/ _ \\ \\ /\\ / /", "#c084fc"},
		{" | |  | | (_| | |_| | | \\ V / | |  __/\\ V  V / ", "#e879f9"},
		{" |_|  |_|\\__,_|\\__|_| |_|\\_/  |_|\\___| \\_/\\_/  ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
