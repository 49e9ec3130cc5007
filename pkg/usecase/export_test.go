package usecase

import "context"

// EmployeeChanged is exported for testing
var EmployeeChanged = employeeChanged

// WithInlineDispatch runs background jobs synchronously for testing
func WithInlineDispatch() Option {
	return func(uc *UseCases) {
		uc.dispatch = func(ctx context.Context, name string, handler func(ctx context.Context) error) {
			_ = handler(ctx)
		}
	}
}
