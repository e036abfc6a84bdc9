package deadline_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model/policy"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/service/deadline"
)

const day = 24 * time.Hour

func testTable(t *testing.T) *policy.Table {
	t.Helper()
	table, err := policy.NewTable(map[types.RoleID]policy.Rule{
		"role-va": {
			Name: "VA",
			Tasks: map[types.TaskType]time.Duration{
				"skit":  7 * day,
				"story": 14 * day,
			},
			Extension: policy.FlatExtension(7 * day),
		},
		"role-editor": {
			Name: "editor",
			Tasks: map[types.TaskType]time.Duration{
				"skit":     7 * day,
				"color_mv": 14 * day,
				"2d_mv":    28 * day,
			},
			Extension: policy.SplitExtension{
				Keyword: "skit",
				Matched: 7 * day,
				Others:  14 * day,
			},
		},
	}, nil)
	gt.NoError(t, err).Required()
	return table
}

func TestCalculatorDeadline(t *testing.T) {
	calc := deadline.NewCalculator(testTable(t))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("standard task uses policy duration", func(t *testing.T) {
		due, err := calc.Deadline("role-va", "skit", now, 0)
		gt.NoError(t, err).Required()
		gt.Value(t, due).Equal(now.Add(7 * day))
	})

	t.Run("deterministic and monotonic in now", func(t *testing.T) {
		due1, err := calc.Deadline("role-va", "story", now, 0)
		gt.NoError(t, err).Required()
		due2, err := calc.Deadline("role-va", "story", now, 0)
		gt.NoError(t, err).Required()
		gt.Value(t, due1).Equal(due2)

		later, err := calc.Deadline("role-va", "story", now.Add(time.Hour), 0)
		gt.NoError(t, err).Required()
		gt.True(t, later.After(due1))
	})

	t.Run("unknown task type for role fails", func(t *testing.T) {
		_, err := calc.Deadline("role-va", "color_mv", now, 0)
		gt.Error(t, err).Is(types.ErrInvalidTaskForRole)
	})

	t.Run("unknown role fails", func(t *testing.T) {
		_, err := calc.Deadline("role-nope", "skit", now, 0)
		gt.Error(t, err).Is(types.ErrInvalidTaskForRole)
	})

	t.Run("custom task requires positive duration", func(t *testing.T) {
		_, err := calc.Deadline("role-va", types.TaskTypeCustom, now, 0)
		gt.Error(t, err).Is(types.ErrInvalidCustomDuration)

		_, err = calc.Deadline("role-va", types.TaskTypeCustom, now, -time.Hour)
		gt.Error(t, err).Is(types.ErrInvalidCustomDuration)

		due, err := calc.Deadline("role-va", types.TaskTypeCustom, now, 3*day)
		gt.NoError(t, err).Required()
		gt.Value(t, due).Equal(now.Add(3 * day))
	})
}

func TestCalculatorExtension(t *testing.T) {
	calc := deadline.NewCalculator(testTable(t))

	t.Run("flat extension from role", func(t *testing.T) {
		ext, err := calc.Extension("role-va", "skit", 0)
		gt.NoError(t, err).Required()
		gt.Value(t, ext).Equal(7 * day)
	})

	t.Run("split extension selects family", func(t *testing.T) {
		ext, err := calc.Extension("role-editor", "skit", 0)
		gt.NoError(t, err).Required()
		gt.Value(t, ext).Equal(7 * day)

		ext, err = calc.Extension("role-editor", "2d_mv", 0)
		gt.NoError(t, err).Required()
		gt.Value(t, ext).Equal(14 * day)
	})

	t.Run("custom override wins over role default", func(t *testing.T) {
		ext, err := calc.Extension("role-va", types.TaskTypeCustom, 1*day)
		gt.NoError(t, err).Required()
		gt.Value(t, ext).Equal(1 * day)
	})

	t.Run("unknown role fails", func(t *testing.T) {
		_, err := calc.Extension("role-nope", "skit", 0)
		gt.Error(t, err).Is(types.ErrInvalidTaskForRole)
	})
}

func TestCalculatorResolves(t *testing.T) {
	calc := deadline.NewCalculator(testTable(t))

	gt.True(t, calc.Resolves("role-va", "skit"))
	gt.False(t, calc.Resolves("role-va", "2d_mv"))
	gt.False(t, calc.Resolves("role-nope", "skit"))
}
