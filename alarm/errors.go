package alarm

import "fmt"

// QueryError reports a failed lookup of existing alarms.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// CreateError reports a failed put of an alarm.
type CreateError struct {
	AlarmName string
	Err       error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create alarm %s: %v", e.AlarmName, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }
