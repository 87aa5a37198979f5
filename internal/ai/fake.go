package ai

import "context"

// Static is a Completer that always answers the same thing. Used in tests
// and when the service runs without an API key.
type Static struct {
	Reply string
	Err   error
}

func (s Static) Complete(_ context.Context, _ string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Reply, nil
}
