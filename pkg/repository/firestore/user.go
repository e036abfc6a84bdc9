package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *userRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_users"
	}
	return "users"
}

// Documents are keyed by member ID so FindOrCreate races collapse onto
// the same document.
func (r *userRepository) docRef(memberID types.MemberID) *firestore.DocumentRef {
	return r.client.Collection(r.collection()).Doc(string(memberID))
}

func (r *userRepository) GetByMemberID(ctx context.Context, memberID types.MemberID) (*model.User, error) {
	docSnap, err := r.docRef(memberID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrUserNotFound, "user not found", goerr.V("memberID", memberID))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("memberID", memberID))
	}

	var u model.User
	if err := docSnap.DataTo(&u); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("memberID", memberID))
	}
	return &u, nil
}

func (r *userRepository) FindOrCreate(ctx context.Context, memberID types.MemberID, username string) (*model.User, error) {
	if err := memberID.Validate(); err != nil {
		return nil, err
	}

	docRef := r.docRef(memberID)

	var u model.User
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				u = model.User{
					ID:       model.NewUserID(),
					MemberID: memberID,
					Username: username,
					Strikes:  model.StrikeFloor,
					JoinedAt: time.Now().UTC(),
				}
				return tx.Set(docRef, &u)
			}
			return goerr.Wrap(err, "failed to get user", goerr.V("memberID", memberID))
		}
		if err := docSnap.DataTo(&u); err != nil {
			return goerr.Wrap(err, "failed to decode user", goerr.V("memberID", memberID))
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find or create user", goerr.V("memberID", memberID))
	}
	return &u, nil
}

func (r *userRepository) IncrementStrikes(ctx context.Context, memberID types.MemberID, delta int) (int, error) {
	docRef := r.docRef(memberID)

	var count int
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrUserNotFound, "user not found", goerr.V("memberID", memberID))
			}
			return goerr.Wrap(err, "failed to get user", goerr.V("memberID", memberID))
		}

		var u model.User
		if err := docSnap.DataTo(&u); err != nil {
			return goerr.Wrap(err, "failed to decode user", goerr.V("memberID", memberID))
		}

		count = u.Strikes + delta
		if count > model.StrikeCeiling {
			count = model.StrikeCeiling
		}
		if count < model.StrikeFloor {
			count = model.StrikeFloor
		}
		return tx.Update(docRef, []firestore.Update{
			{Path: "strikes", Value: count},
		})
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepository) SetHiatus(ctx context.Context, memberID types.MemberID, on bool) (*model.User, error) {
	docRef := r.docRef(memberID)

	var u model.User
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrUserNotFound, "user not found", goerr.V("memberID", memberID))
			}
			return goerr.Wrap(err, "failed to get user", goerr.V("memberID", memberID))
		}
		if err := docSnap.DataTo(&u); err != nil {
			return goerr.Wrap(err, "failed to decode user", goerr.V("memberID", memberID))
		}

		u.OnHiatus = on
		return tx.Update(docRef, []firestore.Update{
			{Path: "on_hiatus", Value: on},
		})
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) ListWithStrikes(ctx context.Context) ([]*model.User, error) {
	iter := r.client.Collection(r.collection()).
		Where("strikes", ">", 0).
		Documents(ctx)
	defer iter.Stop()

	var result []*model.User
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var u model.User
		if err := docSnap.DataTo(&u); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", docSnap.Ref.ID))
		}
		result = append(result, &u)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Strikes != result[j].Strikes {
			return result[i].Strikes > result[j].Strikes
		}
		return result[i].MemberID < result[j].MemberID
	})
	return result, nil
}
