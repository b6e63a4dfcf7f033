// Package pointer provides the click dispatchers. The default dispatcher
// only logs; actually moving the pointer is opt-in.
package pointer

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
)

// LogDispatcher reports where a click would have landed without performing
// it. Used whenever auto-click is disabled or no real dispatcher is wired.
type LogDispatcher struct{}

func (LogDispatcher) Click(ctx context.Context, x, y int) error {
	log.Printf("[POINTER] dry-run click at (%d, %d)", x, y)
	return nil
}

// XdotoolDispatcher performs a real click through the xdotool binary.
type XdotoolDispatcher struct {
	// Binary overrides the executable name, mainly for tests.
	Binary string
}

func (d XdotoolDispatcher) Click(ctx context.Context, x, y int) error {
	binary := d.Binary
	if binary == "" {
		binary = "xdotool"
	}

	move := exec.CommandContext(ctx, binary, "mousemove", strconv.Itoa(x), strconv.Itoa(y))
	if out, err := move.CombinedOutput(); err != nil {
		return fmt.Errorf("xdotool mousemove: %v: %s", err, out)
	}

	click := exec.CommandContext(ctx, binary, "click", "1")
	if out, err := click.CombinedOutput(); err != nil {
		return fmt.Errorf("xdotool click: %v: %s", err, out)
	}

	log.Printf("[POINTER] clicked at (%d, %d)", x, y)
	return nil
}
