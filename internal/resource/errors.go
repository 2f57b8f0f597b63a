package resource

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when a requested resource name is unknown to the
// provider, or when its access class does not match the provider asked.
type NotFoundError struct {
	// Name is the requested resource name.
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %q not found", e.Name)
}

// MissingParameterError is returned when a URI placeholder has no
// corresponding entry in the supplied parameter mapping.
type MissingParameterError struct {
	// Resource is the descriptor being resolved.
	Resource string
	// Parameter is the absent parameter name.
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("resource %q: missing parameter %q", e.Resource, e.Parameter)
}

// InvalidParameterValueError is returned when a supplied value is outside a
// parameter's explicit allowed set.
type InvalidParameterValueError struct {
	// Resource is the descriptor being resolved.
	Resource string
	// Parameter is the offending parameter name.
	Parameter string
	// Value is the rejected value.
	Value string
	// Allowed is the permitted set.
	Allowed []string
}

func (e *InvalidParameterValueError) Error() string {
	return fmt.Sprintf("resource %q: parameter %q: value %q not in allowed set [%s]",
		e.Resource, e.Parameter, e.Value, strings.Join(e.Allowed, ", "))
}

// FunctionNotFoundError is returned when a server-side descriptor names a
// function that is not registered with the provider.
type FunctionNotFoundError struct {
	// Resource is the descriptor being resolved.
	Resource string
	// Function is the unresolved function name.
	Function string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("resource %q: function %q not registered", e.Resource, e.Function)
}

// FetchError is returned when an HTTP fetch fails, either at the transport
// level (Err is set) or with a non-success status (StatusCode is set).
type FetchError struct {
	// URL is the fully substituted fetch URL.
	URL string
	// StatusCode is the non-success HTTP status, or zero for transport
	// failures.
	StatusCode int
	// Err is the underlying transport error, if any.
	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// FunctionExecutionError wraps a failure raised by an invoked server-side
// function.
type FunctionExecutionError struct {
	// Function is the invoked function name.
	Function string
	// Err is the function's error.
	Err error
}

func (e *FunctionExecutionError) Error() string {
	return fmt.Sprintf("function %q failed: %v", e.Function, e.Err)
}

// Unwrap returns the function's error.
func (e *FunctionExecutionError) Unwrap() error {
	return e.Err
}
