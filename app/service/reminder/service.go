// Package reminder delivers due-task emails. A cron job scans for tasks
// whose time has passed and notifies each owner exactly once.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"aria/app/client/mailer"
	"aria/app/client/postgres"
	"aria/app/util/timeparse"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

type TaskSource interface {
	GetDueTasks(ctx context.Context, now time.Time) ([]postgres.Task, error)
	MarkTaskNotified(ctx context.Context, taskID int64) error
}

type UserSource interface {
	GetUserByID(ctx context.Context, userID int64) (*postgres.User, error)
}

type Sender interface {
	SendReminder(ctx context.Context, to, name, title, notes string) error
}

type Service struct {
	cron   *cron.Cron
	tasks  TaskSource
	users  UserSource
	sender Sender
	now    func() time.Time
}

func New(di *do.Injector) (*Service, error) {
	pg := do.MustInvoke[*postgres.Client](di)

	s := &Service{
		tasks:  pg,
		users:  pg,
		sender: do.MustInvoke[*mailer.Client](di),
		now:    time.Now,
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc("@every 1m", func() {
		s.tick(context.Background())
	}); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) Start() {
	s.cron.Start()
}

func (s *Service) tick(ctx context.Context) {
	now := s.now().In(timeparse.Location)

	due, err := s.tasks.GetDueTasks(ctx, now)
	if err != nil {
		slog.Error("Failed to fetch due tasks", "error", err)
		return
	}

	for _, task := range due {
		user, err := s.users.GetUserByID(ctx, task.UserID)
		if err != nil {
			slog.Error("Failed to load task owner", "task", task.ID, "user", task.UserID, "error", err)
			continue
		}

		if user == nil || user.Email == "" {
			slog.Warn("Task owner has no email, skipping reminder", "task", task.ID, "user", task.UserID)
			continue
		}

		if err = s.sender.SendReminder(ctx, user.Email, user.Name, task.Title, task.Notes); err != nil {
			slog.Error("Failed to send reminder", "task", task.ID, "error", err)
			continue
		}

		if err = s.tasks.MarkTaskNotified(ctx, task.ID); err != nil {
			slog.Error("Failed to mark task notified", "task", task.ID, "error", err)
			continue
		}

		slog.Info("Reminder sent", "task", task.ID, "user", task.UserID)
	}
}

func (s *Service) Shutdown() error {
	<-s.cron.Stop().Done()
	return nil
}
