package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Employee() EmployeeRepository
	Config() ConfigRepository
	Voting() VotingRepository

	Close() error
}
