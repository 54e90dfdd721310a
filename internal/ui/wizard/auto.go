package wizard

import (
	"context"
	"fmt"
	"io"
)

// Auto answers prompts without a terminal, for --auto-approve runs and
// non-interactive environments such as CI. Every question and the chosen
// answer are echoed to Out so the transcript shows what was decided.
type Auto struct {
	// Approve is the answer given to every confirmation. When false, Auto
	// declines everything, which makes the session stop at the first gate.
	Approve bool
	Out     io.Writer
}

// Confirm answers with the configured approval and logs the decision.
func (a *Auto) Confirm(_ context.Context, title, description string) (bool, error) {
	a.logf("%s: %s -> %v", title, description, a.Approve)
	return a.Approve, nil
}

// Select picks the first option, which is always the recommended one, or
// the last option (the conservative choice) when approval is off.
func (a *Auto) Select(_ context.Context, title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("select %q: no options", title)
	}
	choice := 0
	if !a.Approve {
		choice = len(options) - 1
	}
	a.logf("%s -> %s", title, options[choice])
	return choice, nil
}

func (a *Auto) logf(format string, args ...any) {
	if a.Out != nil {
		fmt.Fprintf(a.Out, "[auto] "+format+"\n", args...)
	}
}
