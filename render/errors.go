package render

import "fmt"

// FieldError reports a structural option that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("option %q: %s", e.Field, e.Reason)
}

// UnknownCapabilityError reports a pass-through option whose name is not in
// the capability table.
type UnknownCapabilityError struct {
	Name string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown capability %q", e.Name)
}

// ArgumentError reports a capability invoked with the wrong number or type
// of arguments.
type ArgumentError struct {
	Capability string
	Reason     string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("capability %q: %s", e.Capability, e.Reason)
}
