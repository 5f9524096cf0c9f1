package queue_tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"rollcall.io/infrastructure/database/repository/cache"
	"rollcall.io/infrastructure/logger"
	mq_types "rollcall.io/infrastructure/message_queue/types"
)

var HandleAttendanceMarkedTaskName mq_types.Queues = "attendance_marked"

// counters outlive the day they count so late reports still read them
const attendanceCounterTTL = 7 * 24 * time.Hour

type AttendanceMarkedPayload struct {
	Date       string
	CourseID   string
	IdentityID string
}

func AttendanceCounterKey(date string, courseID string) string {
	return fmt.Sprintf("attendance:%s:%s", date, courseID)
}

// AttendanceCounter keeps the per course daily counters in redis.
type AttendanceCounter struct {
	Cache *cache.RedisRepository
}

func (c *AttendanceCounter) HandleAttendanceMarkedTask(ctx context.Context, t *asynq.Task) error {
	var payload AttendanceMarkedPayload
	err := json.Unmarshal(t.Payload(), &payload)
	if err != nil {
		logger.Error("an error occured while unmarshalling attendance queue payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	total, err := c.Cache.IncrementField(ctx, AttendanceCounterKey(payload.Date, payload.CourseID), 1, attendanceCounterTTL)
	if err != nil {
		return err
	}
	logger.Info("attendance counter updated", logger.LoggerOptions{
		Key:  "course",
		Data: payload.CourseID,
	}, logger.LoggerOptions{
		Key:  "total",
		Data: total,
	})
	return nil
}

func (c *AttendanceCounter) Count(ctx context.Context, date string, courseID string) (int64, error) {
	return c.Cache.FindInt(ctx, AttendanceCounterKey(date, courseID))
}

func NewAttendanceMarkedTask(payload AttendanceMarkedPayload) (mq_types.QueueTask, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return mq_types.QueueTask{}, err
	}
	return mq_types.QueueTask{
		Name:     HandleAttendanceMarkedTaskName,
		Payload:  data,
		Priority: mq_types.Medium,
		TimeOut:  30,
		MaxRetry: 5,
	}, nil
}
