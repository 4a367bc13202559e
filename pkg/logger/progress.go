package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ProgressBar draws an in-place bar on the default logger's output.
// When color is disabled (not a terminal) it prints a line every 10% instead.
type ProgressBar struct {
	total       int
	current     int
	width       int
	message     string
	lastDecile  int
	interactive bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(total int, message string) *ProgressBar {
	interactive := false
	if l, ok := defaultLogger.(*logger); ok {
		l.mu.Lock()
		interactive = !l.noColor
		l.mu.Unlock()
	}
	return &ProgressBar{
		total:       total,
		width:       40,
		message:     message,
		lastDecile:  -1,
		interactive: interactive,
	}
}

// Update sets the current position
func (p *ProgressBar) Update(current int) {
	p.current = current
	p.draw()
}

// Increment advances the bar by one
func (p *ProgressBar) Increment() {
	p.current++
	p.draw()
}

// Finish completes the bar
func (p *ProgressBar) Finish() {
	p.current = p.total
	p.draw()
	if p.interactive {
		w, _ := console()
		fmt.Fprintln(w)
	}
}

func (p *ProgressBar) percent() float64 {
	if p.total <= 0 {
		return 1
	}
	pct := float64(p.current) / float64(p.total)
	if pct > 1 {
		return 1
	}
	return pct
}

func (p *ProgressBar) draw() {
	pct := p.percent()
	w, paint := console()

	if !p.interactive {
		decile := int(pct * 10)
		if decile == p.lastDecile {
			return
		}
		p.lastDecile = decile
		fmt.Fprintf(w, "%s: %3.0f%%\n", p.message, pct*100)
		return
	}

	filled := int(pct * float64(p.width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)
	fmt.Fprintf(w, "\r%s: %s %3.0f%%", p.message, paint(bar, color.FgGreen), pct*100)
}
