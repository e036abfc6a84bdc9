package firestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/harmonix-lab/taskbeat/pkg/domain/interfaces"
	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

const defaultListLimit = 50

type assignmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *assignmentRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_assignments"
	}
	return "assignments"
}

func (r *assignmentRepository) docRef(id types.AssignmentID) *firestore.DocumentRef {
	return r.client.Collection(r.collection()).Doc(string(id))
}

func (r *assignmentRepository) Create(ctx context.Context, a *model.Assignment) (*model.Assignment, error) {
	created := a.Clone()
	if created.ID == "" {
		created.ID = model.NewAssignmentID()
	}
	if created.AssignedAt.IsZero() {
		created.AssignedAt = time.Now().UTC()
	}
	if created.Status == "" {
		created.Status = types.AssignmentStatusPending
	}

	if _, err := r.docRef(created.ID).Set(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create assignment", goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *assignmentRepository) Get(ctx context.Context, id types.AssignmentID) (*model.Assignment, error) {
	docSnap, err := r.docRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get assignment", goerr.V("id", id))
	}

	var a model.Assignment
	if err := docSnap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode assignment", goerr.V("id", id))
	}
	return &a, nil
}

func (r *assignmentRepository) ListByStatus(ctx context.Context, st types.AssignmentStatus) ([]*model.Assignment, error) {
	iter := r.client.Collection(r.collection()).
		Where("status", "==", string(st)).
		OrderBy("deadline", firestore.Asc).
		Documents(ctx)
	return collectAssignments(iter)
}

func (r *assignmentRepository) ListByMember(ctx context.Context, memberID types.MemberID) ([]*model.Assignment, error) {
	iter := r.client.Collection(r.collection()).
		Where("member_id", "==", string(memberID)).
		Documents(ctx)
	result, err := collectAssignments(iter)
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		iPending := result[i].Status == types.AssignmentStatusPending
		jPending := result[j].Status == types.AssignmentStatusPending
		if iPending != jPending {
			return iPending
		}
		return result[i].Deadline.Before(result[j].Deadline)
	})
	return result, nil
}

func (r *assignmentRepository) ListOverdue(ctx context.Context, now time.Time) ([]*model.Assignment, error) {
	// Composite index on (status, deadline), see the migrate command.
	// The frozen flag is filtered here rather than in the query so frozen
	// assignments do not need their own index entry; hiatus keeps their
	// deadline far in the future anyway.
	iter := r.client.Collection(r.collection()).
		Where("status", "==", string(types.AssignmentStatusPending)).
		Where("deadline", "<", now).
		OrderBy("deadline", firestore.Asc).
		Documents(ctx)
	result, err := collectAssignments(iter)
	if err != nil {
		return nil, err
	}

	filtered := result[:0]
	for _, a := range result {
		if !a.Frozen {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

func (r *assignmentRepository) List(ctx context.Context, filter interfaces.AssignmentFilter) ([]*model.Assignment, error) {
	q := r.client.Collection(r.collection()).Query
	if filter.MemberID != "" {
		q = q.Where("member_id", "==", string(filter.MemberID))
	}
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}

	iter := q.Documents(ctx)
	result, err := collectAssignments(iter)
	if err != nil {
		return nil, err
	}

	// Substring matching is not expressible as a Firestore query
	filtered := result[:0]
	for _, a := range result {
		if filter.RoleName != "" && !strings.EqualFold(a.RoleName, filter.RoleName) {
			continue
		}
		if filter.Text != "" {
			text := strings.ToLower(filter.Text)
			name := strings.ToLower(a.TaskName)
			taskType := strings.ToLower(a.TaskType.String())
			if !strings.Contains(name, text) && !strings.Contains(taskType, text) {
				continue
			}
		}
		filtered = append(filtered, a)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].AssignedAt.After(filtered[j].AssignedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func collectAssignments(iter *firestore.DocumentIterator) ([]*model.Assignment, error) {
	defer iter.Stop()

	var result []*model.Assignment
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate assignments")
		}

		var a model.Assignment
		if err := docSnap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode assignment", goerr.V("doc_id", docSnap.Ref.ID))
		}
		result = append(result, &a)
	}
	return result, nil
}

func (r *assignmentRepository) Update(ctx context.Context, a *model.Assignment) (*model.Assignment, error) {
	docRef := r.docRef(a.ID)

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", a.ID))
		}
		return nil, goerr.Wrap(err, "failed to check assignment existence", goerr.V("id", a.ID))
	}

	updated := a.Clone()
	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update assignment", goerr.V("id", a.ID))
	}
	return updated, nil
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id types.AssignmentID, st types.AssignmentStatus) (*model.Assignment, error) {
	docRef := r.docRef(id)

	var updated model.Assignment
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get assignment", goerr.V("id", id))
		}
		if err := docSnap.DataTo(&updated); err != nil {
			return goerr.Wrap(err, "failed to decode assignment", goerr.V("id", id))
		}

		updated.Status = st
		return tx.Update(docRef, []firestore.Update{
			{Path: "status", Value: string(st)},
		})
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *assignmentRepository) MarkReminderSent(ctx context.Context, id types.AssignmentID, stage types.ReminderStage) error {
	var field string
	switch stage {
	case types.ReminderFirst:
		field = "first_reminder_sent"
	case types.ReminderFinal:
		field = "final_reminder_sent"
	default:
		return goerr.New("invalid reminder stage", goerr.V("stage", stage))
	}

	_, err := r.docRef(id).Update(ctx, []firestore.Update{
		{Path: field, Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to mark reminder sent", goerr.V("id", id), goerr.V("stage", stage))
	}
	return nil
}

func (r *assignmentRepository) SetSubmissionChannel(ctx context.Context, id types.AssignmentID, channelID string) error {
	_, err := r.docRef(id).Update(ctx, []firestore.Update{
		{Path: "submission_channel_id", Value: channelID},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to set submission channel", goerr.V("id", id))
	}
	return nil
}

func (r *assignmentRepository) Extend(ctx context.Context, id types.AssignmentID, by time.Duration) (*model.Assignment, error) {
	docRef := r.docRef(id)

	var extended model.Assignment
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get assignment", goerr.V("id", id))
		}
		if err := docSnap.DataTo(&extended); err != nil {
			return goerr.Wrap(err, "failed to decode assignment", goerr.V("id", id))
		}
		if extended.HasExtended {
			return goerr.Wrap(types.ErrAlreadyExtended, "extension already used", goerr.V("id", id))
		}

		extended.Deadline = extended.Deadline.Add(by)
		extended.HasExtended = true
		extended.ExtensionCount++
		return tx.Update(docRef, []firestore.Update{
			{Path: "deadline", Value: extended.Deadline},
			{Path: "has_extended", Value: true},
			{Path: "extension_count", Value: extended.ExtensionCount},
		})
	})
	if err != nil {
		return nil, err
	}
	return &extended, nil
}
