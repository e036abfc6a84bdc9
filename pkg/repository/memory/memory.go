package memory

import (
	"github.com/harmonix-lab/taskbeat/pkg/domain/interfaces"
)

// Memory is an in-memory repository for development and tests
type Memory struct {
	assignment *assignmentRepository
	user       *userRepository
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	return &Memory{
		assignment: newAssignmentRepository(),
		user:       newUserRepository(),
	}
}

func (m *Memory) Assignment() interfaces.AssignmentRepository {
	return m.assignment
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Close() error {
	return nil
}
