// Package cli is the blocking line-mode binding: text from stdin, a y/n
// confirmation, everything on one thread of control.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"textcal/internal/controller"
	"textcal/internal/extract"
)

type App struct {
	ctl *controller.Controller

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func New(ctl *controller.Controller, in io.Reader, out, errOut io.Writer) *App {
	return &App{ctl: ctl, in: in, out: out, errOut: errOut}
}

// Run reads the event text until end-of-input, surfaces the extracted record
// for confirmation, and publishes on an affirmative answer. A non-nil return
// is a pipeline failure already explained on errOut's behalf; the caller
// only chooses the exit code.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Please paste the text describing the event and press Ctrl+D (or Ctrl+Z on Windows) when you are done.")
	fmt.Fprintln(a.out, strings.Repeat("-", 20))

	text, err := readUntilEOF(a.in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(a.out, "No input received. Exiting.")
		return nil
	}

	ev, err := a.ctl.Submit(ctx, text)
	if err != nil {
		if errors.Is(err, extract.ErrEmptyInput) {
			fmt.Fprintln(a.out, "No input received. Exiting.")
			return nil
		}
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return err
	}

	rendered, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "\n--- Parsed Event Details ---")
	fmt.Fprintln(a.out, string(rendered))
	fmt.Fprintln(a.out, "--------------------------")
	fmt.Fprintln(a.out)

	fmt.Fprint(a.out, "Does this look correct? (y/n): ")
	if !a.confirm() {
		a.ctl.Cancel()
		fmt.Fprintln(a.out, "Event creation cancelled by user.")
		return nil
	}

	res, err := a.ctl.Confirm(ctx)
	if err != nil {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Event created successfully!")
	fmt.Fprintf(a.out, "Event Summary: %s\n", res.Summary)
	fmt.Fprintf(a.out, "URL: %s\n", res.URL)
	return nil
}

func readUntilEOF(r io.Reader) (string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// confirm reads one more line from the input. On a terminal the EOF that
// ended the event text is not sticky, so the prompt still works; on an
// exhausted pipe the answer defaults to no.
func (a *App) confirm() bool {
	line, err := bufio.NewReader(a.in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	if err != nil && answer == "" {
		return false
	}
	return strings.HasPrefix(answer, "y")
}
