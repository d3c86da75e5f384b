package model

import "time"

// TaskConfig describes one periodically scheduled background task. The
// scheduler polls these configs and reports LastRunAt back after a run.
type TaskConfig struct {
	LastRunAt       *time.Time
	ID              string
	Name            string
	Description     string
	IntervalMinutes int
	IsEnabled       bool
}

// Due reports whether the task should run at the given time.
func (c *TaskConfig) Due(now time.Time) bool {
	if !c.IsEnabled {
		return false
	}
	if c.LastRunAt == nil {
		return true
	}
	return now.Sub(*c.LastRunAt) >= time.Duration(c.IntervalMinutes)*time.Minute
}
