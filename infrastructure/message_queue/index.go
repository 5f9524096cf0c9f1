package messagequeue

import (
	"context"

	"rollcall.io/infrastructure/database/repository/cache"
	"rollcall.io/infrastructure/env"
	"rollcall.io/infrastructure/message_queue/asynq"
	queue_tasks "rollcall.io/infrastructure/message_queue/tasks"
	mq_types "rollcall.io/infrastructure/message_queue/types"
)

var TaskQueue mq_types.TaskQueueBroker

// StartQueue runs the asynq worker. Attendance counters are written to counters.
func StartQueue(cfg env.Config, counters *cache.RedisRepository) {
	TaskQueue = &asynq.AsynqBroker{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		Counter:  &queue_tasks.AttendanceCounter{Cache: counters},
	}
	TaskQueue.Start()
}

func StopQueue() {
	if TaskQueue != nil {
		TaskQueue.Shutdown()
	}
}

// AttendanceEvents publishes attendance_marked tasks on the shared queue.
type AttendanceEvents struct {
	Broker mq_types.TaskQueueBroker
}

func (e AttendanceEvents) AttendanceMarked(ctx context.Context, date string, courseID string, identityID string) error {
	task, err := queue_tasks.NewAttendanceMarkedTask(queue_tasks.AttendanceMarkedPayload{
		Date:       date,
		CourseID:   courseID,
		IdentityID: identityID,
	})
	if err != nil {
		return err
	}
	return e.Broker.Enqueue(ctx, task)
}
