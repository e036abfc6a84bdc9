package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/service/notify"
)

func TestStrikeLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("strikes cap at the ceiling", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.uc.Onboard(ctx, "M100", "aoi")
		gt.NoError(t, err).Required()

		var count int
		for i := 0; i < 10; i++ {
			count, err = env.uc.AddStrike(ctx, "M100")
			gt.NoError(t, err).Required()
		}
		gt.Value(t, count).Equal(model.StrikeCeiling)
	})

	t.Run("removal floors at zero", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.uc.Onboard(ctx, "M100", "aoi")
		gt.NoError(t, err).Required()

		count, err := env.uc.RemoveStrike(ctx, "M100")
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(0)
	})

	t.Run("demotion fires on reaching the ceiling", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.uc.Onboard(ctx, "M100", "aoi")
		gt.NoError(t, err).Required()

		for i := 0; i < 2; i++ {
			_, err := env.uc.AddStrike(ctx, "M100")
			gt.NoError(t, err).Required()
		}
		gt.Value(t, env.demoter.count()).Equal(0)

		count, err := env.uc.AddStrike(ctx, "M100")
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(3)
		gt.Value(t, env.demoter.count()).Equal(1)
		gt.Value(t, env.notifier.CountKind(notify.KindDemotion)).Equal(1)
	})

	t.Run("third overdue task triggers demotion through the sweep", func(t *testing.T) {
		env := newTestEnv(t)
		env.assignSkit(t, "M100")
		env.assignSkit(t, "M100")
		env.assignSkit(t, "M100")

		env.clock.Advance(8 * day)
		result, err := env.uc.Sweep(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, result.OverdueProcessed).Equal(3)

		user, err := env.repo.User().GetByMemberID(ctx, "M100")
		gt.NoError(t, err).Required()
		gt.Value(t, user.Strikes).Equal(3)
		gt.Value(t, env.demoter.count()).Equal(1)
	})
}
