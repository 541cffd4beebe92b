package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-computes the dashboard summary cache.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskMeetingReminders notifies participants of upcoming meetings.
	TaskMeetingReminders = "meetings:reminders"
)

// DashboardWarmupPayload configures a dashboard warmup run.
type DashboardWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewDashboardWarmupTask constructs an Asynq task for the warmup job.
func NewDashboardWarmupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(DashboardWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// MeetingRemindersPayload configures a reminder run. DaysAhead is how far
// ahead of the scheduled date reminders go out.
type MeetingRemindersPayload struct {
	DaysAhead int `json:"days_ahead"`
}

// NewMeetingRemindersTask constructs an Asynq task for the reminder job.
func NewMeetingRemindersTask(daysAhead int) (*asynq.Task, error) {
	data, err := json.Marshal(MeetingRemindersPayload{DaysAhead: daysAhead})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMeetingReminders, data), nil
}
