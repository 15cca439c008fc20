package notifier

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/tradeshow-events/internal/harvest"
)

// MaxStatusLength is the longest status the announcement may be
const MaxStatusLength = 280

// Notifier defines the interface for announcing a finished run
type Notifier interface {
	Notify(summary harvest.Summary) error
}

// formatSummary renders a run summary as a status update
func formatSummary(s harvest.Summary) string {
	var b strings.Builder
	b.WriteString("📋 Trade show harvest complete\n\n")
	fmt.Fprintf(&b, "🗓️ %d events across %d months\n", s.Total, s.MonthsProcessed)
	fmt.Fprintf(&b, "🏢 %d organizers (%d AI, %d website)\n", s.WithCompany, s.FromAI, s.FromWebsite)
	fmt.Fprintf(&b, "✉️ %d contact emails, %d websites\n", s.WithEmail, s.WithWebsite)
	fmt.Fprintf(&b, "📇 Contact information found for %d events\n", s.ContactFound())

	switch {
	case s.Aborted:
		b.WriteString("\n⚠️ Run aborted early")
	case s.Cancelled:
		b.WriteString("\n⏹️ Run cancelled")
	case s.CapReached:
		b.WriteString("\n🔝 Event cap reached")
	}
	b.WriteString("\n\n#TradeShows #Events")

	return truncate(b.String(), MaxStatusLength)
}

// truncate shortens s to at most limit runes, ending with an ellipsis
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
