package notifier

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pfrederiksen/tradeshow-events/internal/harvest"
)

// DryRunNotifier prints what would be posted without actually posting
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to out, or stdout when out is nil
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Notify prints the status that would be posted
func (n *DryRunNotifier) Notify(summary harvest.Summary) error {
	status := formatSummary(summary)
	_, err := fmt.Fprintf(n.out, "--- Announcement ---\n%s\n\n(Length: %d characters)\n",
		status, utf8.RuneCountInString(status))
	return err
}
