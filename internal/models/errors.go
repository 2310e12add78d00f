package models

import "fmt"

// ContractViolation reports a caller bug, such as toggling a row that is not
// a collapsable or referencing an id that is not in the list. It is raised
// with panic and never returned.
type ContractViolation struct {
	Op     string
	ID     NodeID
	Reason string
}

func (e *ContractViolation) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("models: %s %s: %s", e.Op, e.ID, e.Reason)
	}
	return fmt.Sprintf("models: %s: %s", e.Op, e.Reason)
}

func violate(op string, id NodeID, format string, args ...any) {
	panic(&ContractViolation{Op: op, ID: id, Reason: fmt.Sprintf(format, args...)})
}
