package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/harmonix-lab/taskbeat/pkg/domain/interfaces"
	"github.com/harmonix-lab/taskbeat/pkg/domain/model/policy"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/repository/memory"
	"github.com/harmonix-lab/taskbeat/pkg/service/notify"
	"github.com/harmonix-lab/taskbeat/pkg/usecase"
)

const day = 24 * time.Hour

// fakeClock is a settable time source shared by the engine and the test
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

// demotionRecorder records demotion actions
type demotionRecorder struct {
	mu      sync.Mutex
	demoted []types.MemberID
}

func (d *demotionRecorder) Demote(ctx context.Context, memberID types.MemberID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.demoted = append(d.demoted, memberID)
	return nil
}

func (d *demotionRecorder) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.demoted)
}

func testTable(t *testing.T) *policy.Table {
	t.Helper()

	table, err := policy.NewTable(map[types.RoleID]policy.Rule{
		"role-va": {
			Name: "VA",
			Tasks: map[types.TaskType]time.Duration{
				"skit":  7 * day,
				"cover": 14 * day,
			},
			Extension: policy.FlatExtension(2 * day),
		},
		"role-editor": {
			Name: "Editor",
			Tasks: map[types.TaskType]time.Duration{
				"full_mv":   21 * day,
				"skit_edit": 10 * day,
			},
			Extension: policy.SplitExtension{
				Keyword: "skit",
				Matched: 2 * day,
				Others:  4 * day,
			},
		},
	}, nil)
	gt.NoError(t, err).Required()
	return table
}

type testEnv struct {
	uc       *usecase.UseCases
	repo     interfaces.Repository
	notifier *notify.Recorder
	demoter  *demotionRecorder
	clock    *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:     memory.New(),
		notifier: notify.NewRecorder(),
		demoter:  &demotionRecorder{},
		clock:    newFakeClock(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)),
	}
	env.uc = usecase.New(env.repo, testTable(t),
		usecase.WithNotifier(env.notifier),
		usecase.WithDemotionSink(env.demoter),
		usecase.WithClock(env.clock.Now),
	)
	return env
}

func (env *testEnv) assignSkit(t *testing.T, memberID types.MemberID) types.AssignmentID {
	t.Helper()

	created, err := env.uc.AssignTask(context.Background(), usecase.AssignTaskInput{
		MemberID: memberID,
		Username: string(memberID),
		RoleID:   "role-va",
		RoleName: "VA",
		TaskType: "skit",
		TaskName: "October skit",
	})
	gt.NoError(t, err).Required()
	return created.ID
}

func TestAssignTask(t *testing.T) {
	ctx := context.Background()

	t.Run("standard task gets policy deadline", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.uc.AssignTask(ctx, usecase.AssignTaskInput{
			MemberID: "M100",
			Username: "aoi",
			RoleID:   "role-va",
			RoleName: "VA",
			TaskType: "skit",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.Status).Equal(types.AssignmentStatusPending)
		gt.Bool(t, created.Deadline.Equal(env.clock.Now().Add(7*day))).True()
		gt.Bool(t, created.HasExtended).False()

		user, err := env.repo.User().GetByMemberID(ctx, "M100")
		gt.NoError(t, err).Required()
		gt.Value(t, user.ID).Equal(created.UserID)
	})

	t.Run("unknown task type fails", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.AssignTask(ctx, usecase.AssignTaskInput{
			MemberID: "M100",
			Username: "aoi",
			RoleID:   "role-va",
			TaskType: "full_mv",
		})
		gt.Error(t, err).Is(types.ErrInvalidTaskForRole)
	})

	t.Run("custom task requires positive duration", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.AssignTask(ctx, usecase.AssignTaskInput{
			MemberID: "M100",
			Username: "aoi",
			RoleID:   "role-va",
			TaskType: types.TaskTypeCustom,
		})
		gt.Error(t, err).Is(types.ErrInvalidCustomDuration)

		created, err := env.uc.AssignTask(ctx, usecase.AssignTaskInput{
			MemberID:       "M100",
			Username:       "aoi",
			RoleID:         "role-va",
			TaskType:       types.TaskTypeCustom,
			TaskName:       "one-off collab",
			CustomDuration: 3 * day,
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, created.Deadline.Equal(env.clock.Now().Add(3*day))).True()
	})

	t.Run("custom duration rejected for standard task", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.AssignTask(ctx, usecase.AssignTaskInput{
			MemberID:       "M100",
			Username:       "aoi",
			RoleID:         "role-va",
			TaskType:       "skit",
			CustomDuration: 3 * day,
		})
		gt.Error(t, err).Is(types.ErrInvalidCustomDuration)
	})

	t.Run("custom extension rejected for standard task", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.AssignTask(ctx, usecase.AssignTaskInput{
			MemberID:        "M100",
			Username:        "aoi",
			RoleID:          "role-va",
			RoleName:        "VA",
			TaskType:        "skit",
			CustomExtension: 1 * day,
		})
		gt.Error(t, err).Is(types.ErrInvalidCustomDuration)
	})
}

func TestCompleteTask(t *testing.T) {
	ctx := context.Background()

	t.Run("completion commits status and removes a strike", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.assignSkit(t, "M100")

		_, err := env.repo.User().IncrementStrikes(ctx, "M100", 2)
		gt.NoError(t, err).Required()

		updated, err := env.uc.CompleteTask(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.AssignmentStatusCompleted)

		user, err := env.repo.User().GetByMemberID(ctx, "M100")
		gt.NoError(t, err).Required()
		gt.Value(t, user.Strikes).Equal(1)

		gt.Value(t, env.notifier.CountKind(notify.KindApprovalOutcome)).Equal(1)
	})

	t.Run("completing a terminal assignment fails", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.assignSkit(t, "M100")

		_, err := env.uc.CompleteTask(ctx, id)
		gt.NoError(t, err).Required()

		_, err = env.uc.CompleteTask(ctx, id)
		gt.Error(t, err).Is(types.ErrAssignmentNotPending)
	})

	t.Run("notification failure does not roll back completion", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.assignSkit(t, "M100")
		env.notifier.FailKind(notify.KindApprovalOutcome, true)

		updated, err := env.uc.CompleteTask(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.AssignmentStatusCompleted)
	})
}
