package domain

// Authorization is the outcome of checking a protected request.
// It is Authorized, Unauthenticated, or Failed when the check itself could
// not be completed.
type Authorization interface {
	authorization()
}

// Authorized carries the identity of a caller whose token was accepted.
type Authorized struct {
	Identity Identity
}

// Unauthenticated carries the reason a request was rejected.
type Unauthenticated struct {
	Reason error
}

// Failed carries a fault that prevented the check, such as a store outage.
// The caller's credentials were neither accepted nor rejected.
type Failed struct {
	Err error
}

func (Authorized) authorization()      {}
func (Unauthenticated) authorization() {}
func (Failed) authorization()          {}

// Error implements error so a rejection can be logged or wrapped directly.
func (u Unauthenticated) Error() string {
	if u.Reason == nil {
		return ErrUnauthenticated.Error()
	}

	return ErrUnauthenticated.Error() + ": " + u.Reason.Error()
}

// Unwrap exposes both ErrUnauthenticated and the underlying reason to errors.Is.
func (u Unauthenticated) Unwrap() []error {
	return []error{ErrUnauthenticated, u.Reason}
}

func (f Failed) Error() string {
	if f.Err == nil {
		return "authorization failed"
	}

	return "authorization failed: " + f.Err.Error()
}

func (f Failed) Unwrap() error {
	return f.Err
}
