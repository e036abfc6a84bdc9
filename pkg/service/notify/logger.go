package notify

import (
	"context"

	"github.com/harmonix-lab/taskbeat/pkg/utils/logging"
)

type logService struct{}

// NewLogger returns a sink that only logs notifications. Used when no
// chat platform is configured (development mode).
func NewLogger() Service {
	return &logService{}
}

func (s *logService) Notify(ctx context.Context, kind Kind, p Payload) error {
	logging.From(ctx).Info("notification",
		"kind", kind,
		"member_id", p.MemberID,
		"task", p.TaskName,
		"role", p.RoleName,
		"deadline", p.Deadline,
		"message", p.Message,
	)
	return nil
}
