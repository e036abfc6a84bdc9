package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[types.MemberID]*model.User
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[types.MemberID]*model.User),
	}
}

func (r *userRepository) GetByMemberID(ctx context.Context, memberID types.MemberID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, exists := r.users[memberID]
	if !exists {
		return nil, goerr.Wrap(types.ErrUserNotFound, "user not found", goerr.V("memberID", memberID))
	}
	return u.Clone(), nil
}

func (r *userRepository) FindOrCreate(ctx context.Context, memberID types.MemberID, username string) (*model.User, error) {
	if err := memberID.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if u, exists := r.users[memberID]; exists {
		return u.Clone(), nil
	}

	created := &model.User{
		ID:       model.NewUserID(),
		MemberID: memberID,
		Username: username,
		Strikes:  model.StrikeFloor,
		JoinedAt: time.Now().UTC(),
	}
	r.users[memberID] = created
	return created.Clone(), nil
}

func (r *userRepository) IncrementStrikes(ctx context.Context, memberID types.MemberID, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, exists := r.users[memberID]
	if !exists {
		return 0, goerr.Wrap(types.ErrUserNotFound, "user not found", goerr.V("memberID", memberID))
	}

	count := u.Strikes + delta
	if count > model.StrikeCeiling {
		count = model.StrikeCeiling
	}
	if count < model.StrikeFloor {
		count = model.StrikeFloor
	}
	u.Strikes = count
	return count, nil
}

func (r *userRepository) SetHiatus(ctx context.Context, memberID types.MemberID, on bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, exists := r.users[memberID]
	if !exists {
		return nil, goerr.Wrap(types.ErrUserNotFound, "user not found", goerr.V("memberID", memberID))
	}
	u.OnHiatus = on
	return u.Clone(), nil
}

func (r *userRepository) ListWithStrikes(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.User
	for _, u := range r.users {
		if u.Strikes > 0 {
			result = append(result, u.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Strikes != result[j].Strikes {
			return result[i].Strikes > result[j].Strikes
		}
		return result[i].MemberID < result[j].MemberID
	})
	return result, nil
}
