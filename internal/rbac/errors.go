package rbac

import "fmt"

// UnknownRoleError is returned when a permission lookup names a system role
// that does not exist. It is a configuration error and must propagate.
type UnknownRoleError struct {
	Role SystemRole
}

// Error implements the error interface.
func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown system role: %q", string(e.Role))
}
