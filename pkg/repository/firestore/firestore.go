package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/harmonix-lab/taskbeat/pkg/domain/interfaces"
)

type Firestore struct {
	client     *firestore.Client
	assignment *assignmentRepository
	user       *userRepository

	databaseID string
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithDatabaseID selects a named Firestore database instead of "(default)"
func WithDatabaseID(databaseID string) Option {
	return func(f *Firestore) {
		f.databaseID = databaseID
	}
}

// WithCollectionPrefix prefixes every collection name, used to isolate
// test runs against a shared project
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.assignment.collectionPrefix = prefix
		f.user.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Firestore, error) {
	f := &Firestore{
		assignment: &assignmentRepository{},
		user:       &userRepository{},
	}
	for _, opt := range opts {
		opt(f)
	}

	var client *firestore.Client
	var err error
	if f.databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, f.databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", f.databaseID))
	}

	f.client = client
	f.assignment.client = client
	f.user.client = client

	return f, nil
}

func (f *Firestore) Assignment() interfaces.AssignmentRepository {
	return f.assignment
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
