package cqrs

import "context"

// Authorizer decides whether a command may be executed.
// It runs before handler resolution succeeds in dispatch.
type Authorizer interface {
	// Authorize returns nil to accept the command or an error (wrapping
	// ErrUnauthorized) to refuse it.
	Authorize(ctx context.Context, cmd Command) error
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, cmd Command) error

func (f AuthorizerFunc) Authorize(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// AllowAll accepts every command. It is the default policy.
func AllowAll() Authorizer {
	return AuthorizerFunc(func(context.Context, Command) error { return nil })
}
