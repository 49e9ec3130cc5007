package config

import (
	"log/slog"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/service/slack"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken        string
	syncChannel     string
	announceChannel string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("LAUREL_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-sync-channel",
			Usage:       "Channel ID receiving sync reports",
			Category:    "Slack",
			Destination: &x.syncChannel,
			Sources:     cli.EnvVars("LAUREL_SLACK_SYNC_CHANNEL"),
		},
		&cli.StringFlag{
			Name:        "slack-announce-channel",
			Usage:       "Channel ID receiving winner announcements",
			Category:    "Slack",
			Destination: &x.announceChannel,
			Sources:     cli.EnvVars("LAUREL_SLACK_ANNOUNCE_CHANNEL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("sync-channel", x.syncChannel),
		slog.String("announce-channel", x.announceChannel),
	)
}

// IsConfigured checks if a bot token is set
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure returns the Slack notifier, or nil when no bot token is set.
// A token without any channel is an error.
func (x *Slack) Configure() (interfaces.Notifier, error) {
	if x.botToken == "" {
		return nil, nil
	}
	if x.syncChannel == "" && x.announceChannel == "" {
		return nil, goerr.Wrap(ErrMissingParameter, "slack-bot-token requires --slack-sync-channel or --slack-announce-channel")
	}

	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return slack.NewNotifier(svc, x.syncChannel, x.announceChannel), nil
}
