package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

// ConfirmPrompt is shown before a bulk delete.
const ConfirmPrompt = "Are you sure you want to continue? (yes/no): "

// Deleter removes every insight behind the configured endpoint.
type Deleter interface {
	ClearInsights(ctx context.Context) bool
}

// Clearer deletes all insights, optionally after an interactive confirmation.
type Clearer struct {
	client Deleter
}

// NewClearer creates a clearer that deletes through client.
func NewClearer(client Deleter) *Clearer {
	return &Clearer{client: client}
}

// Clear deletes all insights without asking.
func (c *Clearer) Clear(ctx context.Context) bool {
	log.Info().Msg("Clearing all insights")
	ok := c.client.ClearInsights(ctx)
	if !ok {
		log.Error().Msg("Failed to clear insights")
	}
	return ok
}

// ClearWithConfirmation prints a warning to out, reads one answer from in and clears
// only when the answer is "yes" (case and surrounding space ignored).
func (c *Clearer) ClearWithConfirmation(ctx context.Context, in io.Reader, out io.Writer) bool {
	warn := color.New(color.FgYellow, color.Bold)
	warn.Fprintln(out, "WARNING: This will delete ALL insights from the platform!")
	fmt.Fprint(out, ConfirmPrompt)

	if !Confirmed(in) {
		fmt.Fprintln(out, "Operation cancelled.")
		log.Info().Msg("Clear cancelled by user")
		return false
	}
	return c.Clear(ctx)
}

// Confirmed reads a single line from in and reports whether it was "yes".
func Confirmed(in io.Reader) bool {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}
