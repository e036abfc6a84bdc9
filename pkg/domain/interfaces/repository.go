package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Assignment() AssignmentRepository
	User() UserRepository

	Close() error
}
