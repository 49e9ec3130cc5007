package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	periodsCollection     = "voting_periods"
	nominationsCollection = "nominations"
	winnersCollection     = "winners"
)

type votingRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.VotingRepository = &votingRepository{}

func newVotingRepository(client *firestore.Client) *votingRepository {
	return &votingRepository{
		client: client,
	}
}

type periodDoc struct {
	ID        string     `firestore:"id"`
	Name      string     `firestore:"name"`
	StartsAt  time.Time  `firestore:"starts_at"`
	EndsAt    time.Time  `firestore:"ends_at"`
	ClosedAt  *time.Time `firestore:"closed_at"`
	CreatedAt time.Time  `firestore:"created_at"`
	UpdatedAt time.Time  `firestore:"updated_at"`
}

type nominationDoc struct {
	ID          string    `firestore:"id"`
	PeriodID    string    `firestore:"period_id"`
	NomineeID   string    `firestore:"nominee_id"`
	NominatorID string    `firestore:"nominator_id"`
	Reason      string    `firestore:"reason"`
	VotingGroup string    `firestore:"voting_group"`
	CreatedAt   time.Time `firestore:"created_at"`
}

type winnerDoc struct {
	ID          string    `firestore:"id"`
	PeriodID    string    `firestore:"period_id"`
	VotingGroup string    `firestore:"voting_group"`
	EmployeeID  string    `firestore:"employee_id"`
	Score       int       `firestore:"score"`
	RecordedAt  time.Time `firestore:"recorded_at"`
}

func (r *votingRepository) periods() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, periodsCollection))
}

func (r *votingRepository) nominations() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, nominationsCollection))
}

func (r *votingRepository) winners() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, winnersCollection))
}

func toPeriodDoc(p *model.VotingPeriod) *periodDoc {
	return &periodDoc{
		ID:        string(p.ID),
		Name:      p.Name,
		StartsAt:  p.StartsAt,
		EndsAt:    p.EndsAt,
		ClosedAt:  p.ClosedAt,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromPeriodDoc(d *periodDoc) *model.VotingPeriod {
	return &model.VotingPeriod{
		ID:        model.PeriodID(d.ID),
		Name:      d.Name,
		StartsAt:  d.StartsAt,
		EndsAt:    d.EndsAt,
		ClosedAt:  d.ClosedAt,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *votingRepository) CreatePeriod(ctx context.Context, p *model.VotingPeriod) error {
	if _, err := r.periods().Doc(string(p.ID)).Create(ctx, toPeriodDoc(p)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "period already exists", goerr.V("id", p.ID))
		}
		return goerr.Wrap(err, "failed to create period", goerr.V("id", p.ID))
	}
	return nil
}

func (r *votingRepository) GetPeriod(ctx context.Context, id model.PeriodID) (*model.VotingPeriod, error) {
	snap, err := r.periods().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "period not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get period", goerr.V("id", id))
	}

	var d periodDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal period", goerr.V("id", id))
	}
	return fromPeriodDoc(&d), nil
}

func (r *votingRepository) ListPeriods(ctx context.Context) ([]*model.VotingPeriod, error) {
	iter := r.periods().OrderBy("starts_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	periods := []*model.VotingPeriod{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate periods")
		}

		var d periodDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal period", goerr.V("docID", snap.Ref.ID))
		}
		periods = append(periods, fromPeriodDoc(&d))
	}

	sort.SliceStable(periods, func(i, j int) bool {
		if !periods[i].StartsAt.Equal(periods[j].StartsAt) {
			return periods[i].StartsAt.After(periods[j].StartsAt)
		}
		return periods[i].ID < periods[j].ID
	})
	return periods, nil
}

func (r *votingRepository) UpdatePeriod(ctx context.Context, p *model.VotingPeriod) error {
	ref := r.periods().Doc(string(p.ID))
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, toPeriodDoc(p))
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(interfaces.ErrNotFound, "period not found", goerr.V("id", p.ID))
		}
		return goerr.Wrap(err, "failed to update period", goerr.V("id", p.ID))
	}
	return nil
}

// CreateNomination uses the dedupe key as document ID so that a duplicate
// write fails atomically in Firestore
func (r *votingRepository) CreateNomination(ctx context.Context, n *model.Nomination) error {
	d := &nominationDoc{
		ID:          string(n.ID),
		PeriodID:    string(n.PeriodID),
		NomineeID:   string(n.NomineeID),
		NominatorID: string(n.NominatorID),
		Reason:      n.Reason,
		VotingGroup: n.VotingGroup,
		CreatedAt:   n.CreatedAt,
	}
	if _, err := r.nominations().Doc(n.DedupeKey()).Create(ctx, d); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "nomination already exists",
				goerr.V("period_id", n.PeriodID),
				goerr.V("nominator_id", n.NominatorID),
				goerr.V("nominee_id", n.NomineeID))
		}
		return goerr.Wrap(err, "failed to create nomination", goerr.V("id", n.ID))
	}
	return nil
}

func (r *votingRepository) ListNominations(ctx context.Context, periodID model.PeriodID) ([]*model.Nomination, error) {
	iter := r.nominations().Where("period_id", "==", string(periodID)).Documents(ctx)
	defer iter.Stop()

	var result []*model.Nomination
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate nominations", goerr.V("period_id", periodID))
		}

		var d nominationDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal nomination", goerr.V("docID", snap.Ref.ID))
		}
		result = append(result, &model.Nomination{
			ID:          model.NominationID(d.ID),
			PeriodID:    model.PeriodID(d.PeriodID),
			NomineeID:   model.EmployeeID(d.NomineeID),
			NominatorID: model.EmployeeID(d.NominatorID),
			Reason:      d.Reason,
			VotingGroup: d.VotingGroup,
			CreatedAt:   d.CreatedAt,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *votingRepository) SaveWinners(ctx context.Context, winners []*model.Winner) error {
	if len(winners) == 0 {
		return nil
	}

	// Use BulkWriter which automatically handles batching
	bulkWriter := r.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for _, w := range winners {
		d := &winnerDoc{
			ID:          string(w.ID),
			PeriodID:    string(w.PeriodID),
			VotingGroup: w.VotingGroup,
			EmployeeID:  string(w.EmployeeID),
			Score:       w.Score,
			RecordedAt:  w.RecordedAt,
		}
		if _, err := bulkWriter.Set(r.winners().Doc(string(w.ID)), d); err != nil {
			return goerr.Wrap(err, "failed to add Set operation to bulk writer", goerr.V("winner_id", w.ID))
		}
	}

	bulkWriter.Flush()
	return nil
}

func (r *votingRepository) ListWinners(ctx context.Context, periodID model.PeriodID) ([]*model.Winner, error) {
	q := r.winners().Query
	if periodID != "" {
		q = q.Where("period_id", "==", string(periodID))
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.Winner
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate winners", goerr.V("period_id", periodID))
		}

		var d winnerDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal winner", goerr.V("docID", snap.Ref.ID))
		}
		result = append(result, &model.Winner{
			ID:          model.WinnerID(d.ID),
			PeriodID:    model.PeriodID(d.PeriodID),
			VotingGroup: d.VotingGroup,
			EmployeeID:  model.EmployeeID(d.EmployeeID),
			Score:       d.Score,
			RecordedAt:  d.RecordedAt,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].RecordedAt.Equal(result[j].RecordedAt) {
			return result[i].RecordedAt.After(result[j].RecordedAt)
		}
		return result[i].VotingGroup < result[j].VotingGroup
	})
	return result, nil
}
