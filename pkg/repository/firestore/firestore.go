package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

type Firestore struct {
	client   *firestore.Client
	employee *employeeRepository
	config   *configRepository
	voting   *votingRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, mainly to isolate tests
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.employee.collectionPrefix = prefix
		f.config.collectionPrefix = prefix
		f.voting.collectionPrefix = prefix
	}
}

// New connects to Firestore. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:   client,
		employee: newEmployeeRepository(client),
		config:   newConfigRepository(client),
		voting:   newVotingRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Employee() interfaces.EmployeeRepository {
	return f.employee
}

func (f *Firestore) Config() interfaces.ConfigRepository {
	return f.config
}

func (f *Firestore) Voting() interfaces.VotingRepository {
	return f.voting
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
