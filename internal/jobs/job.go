package jobs

import "context"

// Job is a unit of periodic work run by a scheduler.
type Job interface {
	Name() string
	Process(ctx context.Context) error
}
