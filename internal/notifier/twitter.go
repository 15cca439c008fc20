package notifier

import (
	"fmt"
	"net/http"
	"os"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/tradeshow-events/internal/harvest"
	"github.com/pfrederiksen/tradeshow-events/internal/logger"
)

// TwitterNotifier posts the run summary to Twitter
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	return newTwitterNotifier(config.Client(oauth1.NoContext, token)), nil
}

func newTwitterNotifier(httpClient *http.Client) *TwitterNotifier {
	return &TwitterNotifier{client: twitter.NewClient(httpClient)}
}

// Notify posts one status with the run totals
func (n *TwitterNotifier) Notify(summary harvest.Summary) error {
	tweet, _, err := n.client.Statuses.Update(formatSummary(summary), nil)
	if err != nil {
		return fmt.Errorf("failed to post summary for session %s: %w", summary.SessionID, err)
	}

	logger.Info("Posted run summary", logger.Fields{
		"session_id": summary.SessionID,
		"tweet_id":   tweet.IDStr,
	})
	return nil
}
