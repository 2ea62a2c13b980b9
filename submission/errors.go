package submission

import "fmt"

// Created lists the backend ids created before a pipeline stopped.
type Created struct {
	Survey    int
	Questions []int
	Options   []int
}

// RemoteError is a create call failure that aborted the pipeline.
type RemoteError struct {
	Step    string
	Created Created
	Err     error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("create %s: %v", e.Step, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
