package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// Strike bounds enforced by the ledger. Decrement below the floor is a
// no-op; increment at the ceiling stays at the ceiling.
const (
	StrikeFloor   = 0
	StrikeCeiling = 3
)

// NewUserID generates a new UUID v4 UserID
func NewUserID() types.UserID {
	return types.UserID(uuid.New().String())
}

// User is one tracked member of the crew
type User struct {
	ID       types.UserID   `firestore:"id"`
	MemberID types.MemberID `firestore:"member_id"`
	Username string         `firestore:"username"`

	Strikes  int  `firestore:"strikes"`
	OnHiatus bool `firestore:"on_hiatus"`

	JoinedAt time.Time `firestore:"joined_at"`
}

// Clone returns a deep copy of the user
func (u *User) Clone() *User {
	copied := *u
	return &copied
}
