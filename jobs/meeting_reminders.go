package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/ukombozini/backoffice/internal/jobs"
)

// MeetingRemindersJob finds upcoming scheduled meetings and logs a reminder
// for each. Delivery over SMS is handled by a separate gateway that tails
// these log entries.
type MeetingRemindersJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewMeetingRemindersJob wires dependencies for the reminder handler.
func NewMeetingRemindersJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *MeetingRemindersJob {
	return &MeetingRemindersJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes meeting reminder tasks.
func (j *MeetingRemindersJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("meeting reminders: handler not configured")
	}
	var payload MeetingRemindersPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.DaysAhead <= 0 {
		payload.DaysAhead = 1
	}

	tracker := j.metrics().Track(TaskMeetingReminders)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("days_ahead", payload.DaysAhead))
	logger.Info("starting meeting reminders")

	meetings, err := j.fetchUpcoming(ctx, payload.DaysAhead)
	if err != nil {
		resultErr = err
		logger.Error("load upcoming meetings", slog.Any("error", err))
		return resultErr
	}
	if len(meetings) == 0 {
		logger.Info("no upcoming meetings to remind")
		return resultErr
	}

	for _, m := range meetings {
		logger.Info("meeting reminder",
			slog.Int64("meeting_id", m.ID),
			slog.String("title", m.Title),
			slog.String("location", m.Location),
			slog.Time("meeting_date", m.MeetingDate),
			slog.Int("participants", m.Participants))
	}
	logger.Info("completed meeting reminders", slog.Int("meetings", len(meetings)))
	return resultErr
}

type upcomingMeeting struct {
	ID           int64
	Title        string
	Location     string
	MeetingDate  time.Time
	Participants int
}

func (j *MeetingRemindersJob) fetchUpcoming(ctx context.Context, daysAhead int) ([]upcomingMeeting, error) {
	if j.Pool == nil {
		return nil, errors.New("meeting reminders: pool not configured")
	}
	target := j.now().AddDate(0, 0, daysAhead).Format("2006-01-02")
	rows, err := j.Pool.Query(ctx, `
		SELECT m.id, m.title, COALESCE(m.location, ''), m.meeting_date,
		       (SELECT COUNT(*) FROM meeting_members mm WHERE mm.meeting_id = m.id)
		FROM meetings m
		WHERE m.status = 'SCHEDULED' AND m.meeting_date::date = $1::date
		ORDER BY m.meeting_date, m.id`, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meetings := make([]upcomingMeeting, 0)
	for rows.Next() {
		var m upcomingMeeting
		if err := rows.Scan(&m.ID, &m.Title, &m.Location, &m.MeetingDate, &m.Participants); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meetings, nil
}

func (j *MeetingRemindersJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskMeetingReminders))
	}
	return slog.Default().With(slog.String("job", TaskMeetingReminders))
}

func (j *MeetingRemindersJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *MeetingRemindersJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
