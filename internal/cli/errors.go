package cli

import "fmt"

// NotFoundError is returned when an app, server or file named by the user
// does not exist.
type NotFoundError struct {
	// Kind is what was looked up, for example "app" or "backup".
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("invalid %s %s", e.Kind, e.Name)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// InvalidInputError is returned for unusable arguments or flag values.
type InvalidInputError struct {
	Input  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Input == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Input)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *InvalidInputError) Is(target error) bool {
	_, ok := target.(*InvalidInputError)
	return ok
}

// ExternalToolError wraps a failure of SteamCMD, tmux or an editor.
type ExternalToolError struct {
	Tool string
	Err  error
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ExternalToolError) Is(target error) bool {
	_, ok := target.(*ExternalToolError)
	return ok
}
