package slack_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/service/slack"
	"github.com/m-mizutani/gt"
	goslack "github.com/slack-go/slack"
)

type postedMessage struct {
	channelID string
	blocks    []goslack.Block
	text      string
}

// mockSlackService is a mock implementation of slack.Service for testing
type mockSlackService struct {
	mu        sync.Mutex
	posted    []postedMessage
	users     map[string]*slack.User
	postErr   error
	lookupErr error
}

func (m *mockSlackService) PostMessage(_ context.Context, channelID string, blocks []goslack.Block, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return "", m.postErr
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, blocks: blocks, text: text})
	return "1.0", nil
}

func (m *mockSlackService) LookupUserByEmail(_ context.Context, email string) (*slack.User, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.users[email], nil
}

func sectionText(b goslack.Block) string {
	s, ok := b.(*goslack.SectionBlock)
	if !ok || s.Text == nil {
		return ""
	}
	return s.Text.Text
}

func TestNotifySyncResult(t *testing.T) {
	t.Run("posts report to sync channel", func(t *testing.T) {
		svc := &mockSlackService{}
		n := slack.NewNotifier(svc, "C-SYNC", "")

		err := n.NotifySyncResult(context.Background(), &model.SyncResult{
			NewUsers:          2,
			UpdatedUsers:      5,
			Phase:             types.SyncPhaseDone,
			RosterAvailable:   false,
			DirectoryComplete: true,
		})
		gt.NoError(t, err).Required()
		gt.Array(t, svc.posted).Length(1).Required()
		gt.Value(t, svc.posted[0].channelID).Equal("C-SYNC")
		gt.String(t, svc.posted[0].text).Contains("2 new")
		// header, fields, roster warning
		gt.Array(t, svc.posted[0].blocks).Length(3)
	})

	t.Run("no channel disables posting", func(t *testing.T) {
		svc := &mockSlackService{}
		n := slack.NewNotifier(svc, "", "C-ANN")
		gt.NoError(t, n.NotifySyncResult(context.Background(), &model.SyncResult{})).Required()
		gt.Array(t, svc.posted).Length(0)
	})

	t.Run("post failure is returned", func(t *testing.T) {
		svc := &mockSlackService{postErr: errors.New("channel_not_found")}
		n := slack.NewNotifier(svc, "C-SYNC", "")
		gt.Value(t, n.NotifySyncResult(context.Background(), &model.SyncResult{})).NotNil()
	})
}

func TestAnnounceWinners(t *testing.T) {
	period := &model.VotingPeriod{
		ID:       "p1",
		Name:     "March 2026",
		StartsAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	winners := []*model.Winner{
		{ID: "w1", PeriodID: "p1", VotingGroup: "Austin", EmployeeID: "e1", Score: 4},
		{ID: "w2", PeriodID: "p1", VotingGroup: "Denver", EmployeeID: "e2", Score: 2},
	}
	employees := map[model.EmployeeID]*model.Employee{
		"e1": {ID: "e1", FullName: "Maria Gomez", Email: "maria@example.com"},
		"e2": {ID: "e2", FullName: "Sam Roe", Email: "sam@example.com"},
	}

	t.Run("mentions winners with a Slack account", func(t *testing.T) {
		svc := &mockSlackService{users: map[string]*slack.User{
			"maria@example.com": {ID: "U1"},
		}}
		n := slack.NewNotifier(svc, "", "C-ANN")

		gt.NoError(t, n.AnnounceWinners(context.Background(), period, winners, employees)).Required()
		gt.Array(t, svc.posted).Length(1).Required()

		msg := svc.posted[0]
		gt.Value(t, msg.channelID).Equal("C-ANN")
		gt.Array(t, msg.blocks).Length(3).Required()
		gt.String(t, sectionText(msg.blocks[1])).Contains("<@U1>")
		gt.String(t, sectionText(msg.blocks[1])).Contains("4 nominations")
		gt.String(t, sectionText(msg.blocks[2])).Contains("Sam Roe")
	})

	t.Run("lookup failure falls back to display name", func(t *testing.T) {
		svc := &mockSlackService{lookupErr: errors.New("ratelimited")}
		n := slack.NewNotifier(svc, "", "C-ANN")

		gt.NoError(t, n.AnnounceWinners(context.Background(), period, winners, employees)).Required()
		gt.String(t, sectionText(svc.posted[0].blocks[1])).Contains("Maria Gomez")
	})

	t.Run("no winners still announces the period", func(t *testing.T) {
		svc := &mockSlackService{}
		n := slack.NewNotifier(svc, "", "C-ANN")

		gt.NoError(t, n.AnnounceWinners(context.Background(), period, nil, nil)).Required()
		gt.Array(t, svc.posted[0].blocks).Length(2).Required()
		gt.String(t, sectionText(svc.posted[0].blocks[1])).Contains("No nominations")
	})
}
