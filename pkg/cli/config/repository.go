package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/harmonix-lab/taskbeat/pkg/domain/interfaces"
	"github.com/harmonix-lab/taskbeat/pkg/repository/firestore"
	"github.com/harmonix-lab/taskbeat/pkg/repository/memory"
)

// Repository holds CLI flags selecting the persistence backend
type Repository struct {
	backend             string
	firestoreProjectID  string
	firestoreDatabaseID string
}

// Flags returns CLI flags for repository configuration
func (x *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend (memory or firestore)",
			Category:    "Repository",
			Value:       "memory",
			Sources:     cli.EnvVars("TASKBEAT_REPOSITORY_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "GCP project ID for Firestore",
			Category:    "Repository",
			Sources:     cli.EnvVars("TASKBEAT_FIRESTORE_PROJECT_ID"),
			Destination: &x.firestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID (default database when empty)",
			Category:    "Repository",
			Sources:     cli.EnvVars("TASKBEAT_FIRESTORE_DATABASE_ID"),
			Destination: &x.firestoreDatabaseID,
		},
	}
}

func (x Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("firestoreProjectID", x.firestoreProjectID),
		slog.String("firestoreDatabaseID", x.firestoreDatabaseID),
	)
}

// FirestoreProjectID returns the configured GCP project ID
func (x *Repository) FirestoreProjectID() string {
	return x.firestoreProjectID
}

// FirestoreDatabaseID returns the configured Firestore database ID
func (x *Repository) FirestoreDatabaseID() string {
	return x.firestoreDatabaseID
}

// Configure builds the repository selected by flags
func (x *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch x.backend {
	case "memory", "":
		return memory.New(), nil

	case "firestore":
		if x.firestoreProjectID == "" {
			return nil, goerr.New("firestore-project-id is required for the firestore backend")
		}
		var opts []firestore.Option
		if x.firestoreDatabaseID != "" {
			opts = append(opts, firestore.WithDatabaseID(x.firestoreDatabaseID))
		}
		repo, err := firestore.New(ctx, x.firestoreProjectID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create firestore repository")
		}
		return repo, nil

	default:
		return nil, goerr.New("unknown repository backend", goerr.V("backend", x.backend))
	}
}
