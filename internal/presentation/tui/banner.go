package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the MentorAI banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  __  __            _             _    ___ ", "#818cf8"},
		{" |  \\/  | ___ _ __ | |_ ___  _ __/_\\  |_ _|", "#a78bfa"},
		{" | |\\/| |/ _ \\ '_ \\| __/ _ \\| '__//_\\\\  | | ", "#c084fc"},
		{" | |  | |  __/ | | | || (_) | | /  _  \\ | | ", "#e879f9"},
		{" |_|  |_|\\___|_| |_|\\__\\___/|_| \\_/ \\_/|___|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
