package memory

import (
	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
)

// Memory is an in-process repository used by tests and --no-db runs
type Memory struct {
	employee *employeeRepository
	config   *configRepository
	voting   *votingRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		employee: newEmployeeRepository(),
		config:   newConfigRepository(),
		voting:   newVotingRepository(),
	}
}

func (m *Memory) Employee() interfaces.EmployeeRepository {
	return m.employee
}

func (m *Memory) Config() interfaces.ConfigRepository {
	return m.config
}

func (m *Memory) Voting() interfaces.VotingRepository {
	return m.voting
}

func (m *Memory) Close() error {
	return nil
}
