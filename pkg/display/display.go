// Package display pushes the status line to the window manager.
package display

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultCommand sets the X root window name.
const DefaultCommand = "xsetroot"

// Sink shows one line.
type Sink interface {
	Show(ctx context.Context, line string) error
}

// RootWindow sets the root window title through xsetroot(1).
type RootWindow struct {
	Command string
}

// NewRootWindow returns a RootWindow sink. An empty command selects
// DefaultCommand.
func NewRootWindow(command string) *RootWindow {
	if command == "" {
		command = DefaultCommand
	}
	return &RootWindow{Command: command}
}

// Show runs "<command> -name <line>". The command's stderr is part of the
// returned error.
func (r *RootWindow) Show(ctx context.Context, line string) error {
	logrus.WithField("line", line).Trace("setting root window name")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Command, "-name", line)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return pkgerrors.Wrapf(err, "%s failed: %s", r.Command, msg)
		}
		return pkgerrors.Wrapf(err, "%s failed", r.Command)
	}

	return nil
}
