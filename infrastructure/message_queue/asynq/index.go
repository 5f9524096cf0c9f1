package asynq

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"rollcall.io/infrastructure/logger"
	queue_tasks "rollcall.io/infrastructure/message_queue/tasks"
	mq_types "rollcall.io/infrastructure/message_queue/types"
)

type AsynqBroker struct {
	Addr     string
	Password string
	Counter  *queue_tasks.AttendanceCounter

	Client *asynq.Client
	server *asynq.Server
}

func (aq *AsynqBroker) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     aq.Addr,
		Password: aq.Password,
	}
}

// Start connects the client and runs the worker in the background.
func (aq *AsynqBroker) Start() {
	aq.Client = asynq.NewClient(aq.redisOpt())

	aq.server = asynq.NewServer(
		aq.redisOpt(),
		asynq.Config{
			Concurrency: 20,
			Queues: map[string]int{
				string(mq_types.High):   7,
				string(mq_types.Medium): 2,
				string(mq_types.Low):    1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(string(queue_tasks.HandleAttendanceMarkedTaskName), aq.Counter.HandleAttendanceMarkedTask)

	go func() {
		if err := aq.server.Run(mux); err != nil {
			logger.Error("task queue worker stopped", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
	}()
	logger.Info("task queue started")
}

func (aq *AsynqBroker) Enqueue(ctx context.Context, task mq_types.QueueTask) error {
	if aq.Client == nil {
		return errors.New("task queue is not started")
	}
	if task.TimeOut == 0 {
		task.TimeOut = 60
	}
	if task.MaxRetry == 0 {
		task.MaxRetry = 10
	}
	_, err := aq.Client.EnqueueContext(ctx, asynq.NewTask(string(task.Name), task.Payload),
		asynq.ProcessIn(time.Duration(task.ProcessIn)*time.Second),
		asynq.MaxRetry(task.MaxRetry),
		asynq.Timeout(time.Second*time.Duration(task.TimeOut)),
		asynq.Queue(string(task.Priority)))
	if err != nil {
		logger.Error("could not enqueue task", logger.LoggerOptions{
			Key:  "task",
			Data: task.Name,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
	return err
}

func (aq *AsynqBroker) Shutdown() {
	if aq.server != nil {
		aq.server.Shutdown()
	}
	if aq.Client != nil {
		_ = aq.Client.Close()
	}
}
