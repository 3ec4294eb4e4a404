package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeReviewNotify is the task type for review outcome notifications.
	TaskTypeReviewNotify = "kyc:review.notify"
)

// ReviewNotifyPayload describes a review outcome to notify the user about.
type ReviewNotifyPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// NewReviewNotifyTask constructs an Asynq task.
func NewReviewNotifyTask(payload ReviewNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReviewNotify, data), nil
}

// ReviewNotifyJob processes TaskTypeReviewNotify tasks.
type ReviewNotifyJob struct {
	logger *slog.Logger
}

// NewReviewNotifyJob constructs the notification job.
func NewReviewNotifyJob(logger *slog.Logger) *ReviewNotifyJob {
	return &ReviewNotifyJob{logger: logger}
}

// Handle delivers a single notification.
func (j *ReviewNotifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReviewNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder delivery: log the outcome. SMTP integration follows the
	// same handler contract.
	if j.logger != nil {
		j.logger.Info("review notification",
			slog.String("user", payload.UserID),
			slog.String("status", payload.Status))
	} else {
		fmt.Printf("[jobs] notify user=%s status=%s\n", payload.UserID, payload.Status)
	}
	return nil
}
