package interfaces

import (
	"context"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// GetByMemberID retrieves a user by external platform ID
	GetByMemberID(ctx context.Context, memberID types.MemberID) (*model.User, error)

	// FindOrCreate returns the existing user for the member ID, creating
	// one if absent. Concurrent calls for the same member converge to a
	// single record.
	FindOrCreate(ctx context.Context, memberID types.MemberID, username string) (*model.User, error)

	// IncrementStrikes atomically adjusts the strike count by delta,
	// clamped to [model.StrikeFloor, model.StrikeCeiling], and returns
	// the resulting count.
	IncrementStrikes(ctx context.Context, memberID types.MemberID, delta int) (int, error)

	// SetHiatus sets the hiatus flag and returns the updated user
	SetHiatus(ctx context.Context, memberID types.MemberID, on bool) (*model.User, error)

	// ListWithStrikes retrieves users with at least one strike, highest
	// strike count first
	ListWithStrikes(ctx context.Context) ([]*model.User, error)
}
