package domain

import "fmt"

// ValidationError marks malformed or business-rule-violating input.
// Nothing is persisted when it is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a lookup miss for an account, bill, loan or card.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

func NewNotFoundError(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// InsufficientFundsError marks a balance shortfall on the funding side.
type InsufficientFundsError struct {
	AvailableCents int64
	RequestedCents int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %d, requested %d", e.AvailableCents, e.RequestedCents)
}

// LimitExceededError marks a policy-cap breach (transaction, per-transaction,
// daily or credit limit).
type LimitExceededError struct {
	Limit          string
	LimitCents     int64
	RequestedCents int64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit exceeded: limit %d, requested %d", e.Limit, e.LimitCents, e.RequestedCents)
}

// UnauthorizedError marks access to a bill or card not owned by the caller.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string { return e.Msg }

func NewUnauthorizedError(format string, args ...any) error {
	return &UnauthorizedError{Msg: fmt.Sprintf(format, args...)}
}

// InternalError wraps an unexpected store failure. Always surfaced, never
// silently swallowed.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

func NewInternalError(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}
