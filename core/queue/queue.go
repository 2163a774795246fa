package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"meeting-slot-api/core/constants"
	"meeting-slot-api/core/logger"

	"github.com/hibiken/asynq"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) clientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.Addr, Password: c.Password, DB: c.DB}
}

// Enqueuer is the producer side used by services.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) (string, error)
}

type Client struct {
	client *asynq.Client
}

func NewClient(cfg RedisConfig) *Client {
	return &Client{client: asynq.NewClient(cfg.clientOpt())}
}

// Enqueue JSON-encodes payload and returns the task id.
func (c *Client) Enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", taskType, err)
	}

	defaults := []asynq.Option{
		asynq.MaxRetry(constants.TaskMaxRetry),
		asynq.Timeout(constants.TaskProcessTimeout),
		asynq.Queue(constants.QueueDefault),
	}
	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(taskType, body), append(defaults, opts...)...)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", taskType, err)
	}

	logger.Info("Queue:Enqueue:Success", "type", taskType, "id", info.ID, "queue", info.Queue)
	return info.ID, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Worker runs registered task handlers.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorker(cfg RedisConfig, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = constants.WorkerConcurrency
	}
	server := asynq.NewServer(cfg.clientOpt(), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			constants.QueueCritical: 6,
			constants.QueueDefault:  3,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Queue:Worker:TaskFailed", "type", task.Type(), "error", err)
		}),
	})
	return &Worker{server: server, mux: asynq.NewServeMux()}
}

func (w *Worker) Handle(taskType string, handler func(context.Context, *asynq.Task) error) {
	w.mux.HandleFunc(taskType, handler)
}

// Start runs the worker in the background.
func (w *Worker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	logger.Info("Queue:Worker:Started")
	return nil
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
	logger.Info("Queue:Worker:Stopped")
}
