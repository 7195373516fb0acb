package notify

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DesktopNotifier is the console stand-in for a desktop toast: it writes the
// alert to the terminal the process is attached to. Always available, never
// fails on a healthy writer.
type DesktopNotifier struct {
	out io.Writer
}

// NewDesktopNotifier creates a desktop notifier writing to stdout.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{out: os.Stdout}
}

func (d *DesktopNotifier) Name() string { return "desktop" }

// Notify prints the alert headline and body.
func (d *DesktopNotifier) Notify(_ context.Context, ev Event) error {
	_, err := fmt.Fprintf(d.out, "🔔 %s\n   %s\n", ev.Title(), ev.Body())
	return err
}
