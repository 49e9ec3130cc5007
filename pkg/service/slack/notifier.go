package slack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Notifier posts sync reports and winner announcements to Slack channels.
// An empty channel disables that kind of message.
type Notifier struct {
	svc             Service
	syncChannel     string
	announceChannel string
}

var _ interfaces.Notifier = &Notifier{}

// NewNotifier creates a notifier on top of svc
func NewNotifier(svc Service, syncChannel, announceChannel string) *Notifier {
	return &Notifier{
		svc:             svc,
		syncChannel:     syncChannel,
		announceChannel: announceChannel,
	}
}

// NotifySyncResult posts the report of a full sync
func (n *Notifier) NotifySyncResult(ctx context.Context, result *model.SyncResult) error {
	if n.syncChannel == "" || result == nil {
		return nil
	}

	blocks := BuildSyncReportBlocks(result)
	text := fmt.Sprintf("Employee sync %s: %d new, %d updated, %d deactivated",
		result.Phase, result.NewUsers, result.UpdatedUsers, result.DeactivatedUsers)

	if _, err := n.svc.PostMessage(ctx, n.syncChannel, blocks, text); err != nil {
		return goerr.Wrap(err, "failed to post sync report")
	}
	return nil
}

// AnnounceWinners posts the winners of a closed period, mentioning winners
// that have a Slack account
func (n *Notifier) AnnounceWinners(ctx context.Context, period *model.VotingPeriod, winners []*model.Winner, employees map[model.EmployeeID]*model.Employee) error {
	if n.announceChannel == "" || period == nil {
		return nil
	}

	names := make(map[model.EmployeeID]string, len(winners))
	for _, w := range winners {
		e, ok := employees[w.EmployeeID]
		if !ok {
			names[w.EmployeeID] = string(w.EmployeeID)
			continue
		}
		names[w.EmployeeID] = e.DisplayName()

		user, err := n.svc.LookupUserByEmail(ctx, e.Email)
		if err != nil {
			logging.From(ctx).Warn("Failed to resolve Slack user for winner",
				slog.String("employee_id", string(w.EmployeeID)),
				slog.Any("error", err),
			)
			continue
		}
		if user != nil {
			names[w.EmployeeID] = "<@" + user.ID + ">"
		}
	}

	blocks := BuildWinnerBlocks(period, winners, names)
	text := fmt.Sprintf("Employee of the month winners for %s", period.Name)

	if _, err := n.svc.PostMessage(ctx, n.announceChannel, blocks, text); err != nil {
		return goerr.Wrap(err, "failed to post winner announcement", goerr.V("period_id", period.ID))
	}
	return nil
}

// BuildSyncReportBlocks renders a sync result as Block Kit blocks
func BuildSyncReportBlocks(result *model.SyncResult) []slack.Block {
	header := slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, "Employee sync: "+string(result.Phase), false, false),
	)

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*New*\n%d", result.NewUsers), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Updated*\n%d", result.UpdatedUsers), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Deactivated*\n%d", result.DeactivatedUsers), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Processed*\n%d", result.TotalProcessed), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Roster matches*\n%d", result.MatchedExternalRecords), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Errors*\n%d", len(result.Errors)), false, false),
	}

	blocks := []slack.Block{
		header,
		slack.NewSectionBlock(nil, fields, nil),
	}

	var notes []string
	if !result.RosterAvailable {
		notes = append(notes, ":warning: Roster was unavailable; directory data only.")
	}
	if !result.DirectoryComplete && result.Phase != "" {
		notes = append(notes, ":warning: Directory listing was incomplete; deactivation skipped.")
	}
	for _, note := range notes {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, note, false, false)))
	}

	return blocks
}

// BuildWinnerBlocks renders the winners of a period, one line per group
func BuildWinnerBlocks(period *model.VotingPeriod, winners []*model.Winner, names map[model.EmployeeID]string) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, ":trophy: "+period.Name, true, false),
		),
	}

	if len(winners) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "No nominations were received this period.", false, false),
			nil, nil,
		))
		return blocks
	}

	for _, w := range winners {
		group := w.VotingGroup
		if group == "" {
			group = "Everyone"
		}
		name := names[w.EmployeeID]
		if name == "" {
			name = string(w.EmployeeID)
		}
		line := fmt.Sprintf("*%s*: %s (%d nominations)", group, name, w.Score)
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, line, false, false),
			nil, nil,
		))
	}
	return blocks
}
