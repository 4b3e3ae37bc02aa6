// Package cli provides terminal output utilities including spinners and colored output
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorBold   = "\033[1m"
)

// Spinner represents an animated status line
type Spinner struct {
	frames   []string
	current  int
	prefix   string
	suffix   string
	interval time.Duration
	mu       sync.Mutex
	writer   io.Writer
	active   bool
	colorize bool
	done     chan bool
}

// NewSpinner creates a new spinner with the default braille frames
func NewSpinner(prefix string) *Spinner {
	return &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		current:  0,
		prefix:   prefix,
		interval: 100 * time.Millisecond,
		writer:   os.Stdout,
		active:   false,
		colorize: isTerminal(),
		done:     make(chan bool),
	}
}

// SetFrames replaces the animation frames. The lottery reveal uses this
// to cycle through member names while the winner is being picked.
func (s *Spinner) SetFrames(frames []string) *Spinner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(frames) > 0 {
		s.frames = frames
		s.current = 0
	}
	return s
}

// SetInterval sets the time between frames
func (s *Spinner) SetInterval(d time.Duration) *Spinner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.interval = d
	}
	return s
}

// SetWriter sets the output writer
func (s *Spinner) SetWriter(w io.Writer) *Spinner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
	return s
}

// SetSuffix sets the suffix text
func (s *Spinner) SetSuffix(suffix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suffix = suffix
}

// Start starts the spinner
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	interval := s.interval
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				if !s.active {
					s.mu.Unlock()
					return
				}
				s.render()
				s.current = (s.current + 1) % len(s.frames)
				s.mu.Unlock()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop stops the spinner
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}

	s.active = false
	close(s.done)

	// Clear the line
	fmt.Fprint(s.writer, "\r"+strings.Repeat(" ", 80)+"\r")
}

// Success stops the spinner and shows a success message
func (s *Spinner) Success(message string) {
	s.Stop()
	if s.colorize {
		fmt.Fprintf(s.writer, "%s✓%s %s\n", ColorGreen, ColorReset, message)
	} else {
		fmt.Fprintf(s.writer, "✓ %s\n", message)
	}
}

// Error stops the spinner and shows an error message
func (s *Spinner) Error(message string) {
	s.Stop()
	if s.colorize {
		fmt.Fprintf(s.writer, "%s✗%s %s\n", ColorRed, ColorReset, message)
	} else {
		fmt.Fprintf(s.writer, "✗ %s\n", message)
	}
}

// render renders the spinner
func (s *Spinner) render() {
	frame := s.frames[s.current]
	if s.colorize {
		frame = ColorCyan + frame + ColorReset
	}

	output := fmt.Sprintf("\r%s %s", frame, s.prefix)
	if s.suffix != "" {
		output += " " + s.suffix
	}

	fmt.Fprint(s.writer, output)
}

// CountdownLine rewrites a single terminal line with the remaining time.
// The draw timer uses it so ticks update in place instead of scrolling.
type CountdownLine struct {
	mu       sync.Mutex
	writer   io.Writer
	prefix   string
	colorize bool
	warnAt   int
}

// NewCountdownLine creates a countdown renderer writing to stdout
func NewCountdownLine(prefix string) *CountdownLine {
	return &CountdownLine{
		writer:   os.Stdout,
		prefix:   prefix,
		colorize: isTerminal(),
		warnAt:   10,
	}
}

// SetWriter sets the output writer
func (c *CountdownLine) SetWriter(w io.Writer) *CountdownLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer = w
	return c
}

// Tick renders the remaining seconds in place
func (c *CountdownLine) Tick(remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	display := fmt.Sprintf("%d:%02d", remaining/60, remaining%60)
	if c.colorize {
		switch {
		case remaining <= c.warnAt:
			display = ColorRed + display + ColorReset
		case remaining <= 30:
			display = ColorYellow + display + ColorReset
		default:
			display = ColorGreen + display + ColorReset
		}
	}

	fmt.Fprintf(c.writer, "\r%s %s ", c.prefix, display)
}

// Done clears the countdown line and prints a final message
func (c *CountdownLine) Done(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprint(c.writer, "\r"+strings.Repeat(" ", 80)+"\r")
	fmt.Fprintln(c.writer, message)
}

// Helper functions

// Colorize returns a colored string
func Colorize(text string, color string) string {
	if !isTerminal() {
		return text
	}
	return color + text + ColorReset
}

// Success prints a success message
func Success(message string) {
	if isTerminal() {
		fmt.Printf("%s✓%s %s\n", ColorGreen, ColorReset, message)
	} else {
		fmt.Printf("✓ %s\n", message)
	}
}

// Error prints an error message
func Error(message string) {
	if isTerminal() {
		fmt.Printf("%s✗%s %s\n", ColorRed, ColorReset, message)
	} else {
		fmt.Printf("✗ %s\n", message)
	}
}

// Warning prints a warning message
func Warning(message string) {
	if isTerminal() {
		fmt.Printf("%s⚠%s %s\n", ColorYellow, ColorReset, message)
	} else {
		fmt.Printf("⚠ %s\n", message)
	}
}

// Info prints an info message
func Info(message string) {
	if isTerminal() {
		fmt.Printf("%sℹ%s %s\n", ColorBlue, ColorReset, message)
	} else {
		fmt.Printf("ℹ %s\n", message)
	}
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
