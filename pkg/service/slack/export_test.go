package slack

import "github.com/slack-go/slack"

// NewWithAPIURL points the client at a fake Slack API for testing
func NewWithAPIURL(token, apiURL string, opts ...Option) (Service, error) {
	return newClient(token, []slack.Option{slack.OptionAPIURL(apiURL)}, opts...)
}
