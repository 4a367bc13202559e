package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Icons and symbols for different log types
const (
	IconSuccess = "✅"
	IconError   = "❌"
	IconWarning = "⚠️"
	IconInfo    = "ℹ️"
	IconRocket  = "🚀"
	IconConfig  = "⚙️"
	IconNetwork = "🌐"
	IconTarget  = "🎯"
	IconFile    = "📄"
	IconRefresh = "🔄"
	IconDot     = "•"
	IconArrow   = "→"
)

// Success logs a success message with a green checkmark
func Success(args ...interface{}) {
	defaultLogger.Info(IconSuccess + " " + fmt.Sprint(args...))
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs a progress message with a refresh icon
func Progress(args ...interface{}) {
	defaultLogger.Info(IconRefresh + " " + fmt.Sprint(args...))
}

// Progressf logs a formatted progress message
func Progressf(format string, args ...interface{}) {
	Progress(fmt.Sprintf(format, args...))
}

// Network logs a network-related message
func Network(args ...interface{}) {
	defaultLogger.Info(IconNetwork + " " + fmt.Sprint(args...))
}

// Networkf logs a formatted network message
func Networkf(format string, args ...interface{}) {
	Network(fmt.Sprintf(format, args...))
}

// console returns the default logger's writer and a painter honoring its color setting
func console() (io.Writer, func(string, ...color.Attribute) string) {
	l, ok := defaultLogger.(*logger)
	if !ok {
		return io.Discard, func(s string, _ ...color.Attribute) string { return s }
	}
	l.mu.Lock()
	w, noColor := l.writer, l.noColor
	l.mu.Unlock()

	return w, func(s string, attrs ...color.Attribute) string {
		if noColor {
			return s
		}
		c := color.New(attrs...)
		c.EnableColor()
		return c.Sprint(s)
	}
}

// LogSection creates a visual section separator
func LogSection(title string) {
	w, paint := console()
	line := strings.Repeat("=", 50)
	fmt.Fprintln(w, paint(line, color.FgCyan))
	fmt.Fprintln(w, paint(title, color.FgCyan, color.Bold))
	fmt.Fprintln(w, paint(line, color.FgCyan))
}

// LogSubSection creates a visual subsection separator
func LogSubSection(title string) {
	w, paint := console()
	line := strings.Repeat("-", 40)
	fmt.Fprintln(w, paint(line, color.FgHiBlack))
	fmt.Fprintln(w, paint(title, color.FgHiBlack))
	fmt.Fprintln(w, paint(line, color.FgHiBlack))
}

// LogList logs a list of items with bullets
func LogList(title string, items []string) {
	Info(title)
	w, _ := console()
	for _, item := range items {
		fmt.Fprintf(w, "  %s %s\n", IconDot, item)
	}
}

// LogKeyValue logs a key-value pair
func LogKeyValue(key string, value interface{}) {
	w, paint := console()
	fmt.Fprintf(w, "%s %v\n", paint(key+":", color.FgCyan), value)
}

// Table represents a simple table for logging
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow adds a row to the table
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Print writes the table to the default logger's output
func (t *Table) Print() {
	if len(t.headers) == 0 {
		return
	}
	w, paint := console()

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var header, sep strings.Builder
	for i, h := range t.headers {
		fmt.Fprintf(&header, "%-*s  ", widths[i], h)
		sep.WriteString(strings.Repeat("-", widths[i]) + "  ")
	}
	fmt.Fprintln(w, paint(header.String(), color.Bold))
	fmt.Fprintln(w, sep.String())

	for _, row := range t.rows {
		var b strings.Builder
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w, b.String())
	}
}
