package reminder

import (
	"context"
	"testing"
	"time"

	"aria/app/client/postgres"

	"github.com/stretchr/testify/require"
)

type fakeTasks struct {
	due      []postgres.Task
	notified []int64
}

func (f *fakeTasks) GetDueTasks(_ context.Context, _ time.Time) ([]postgres.Task, error) {
	return f.due, nil
}

func (f *fakeTasks) MarkTaskNotified(_ context.Context, taskID int64) error {
	f.notified = append(f.notified, taskID)
	return nil
}

type fakeUsers struct {
	users map[int64]*postgres.User
}

func (f *fakeUsers) GetUserByID(_ context.Context, userID int64) (*postgres.User, error) {
	return f.users[userID], nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendReminder(_ context.Context, to, _, title, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+"|"+title)
	return nil
}

func TestTickSendsAndMarksDueTasks(t *testing.T) {
	tasks := &fakeTasks{due: []postgres.Task{
		{ID: 1, UserID: 10, Title: "call mom"},
		{ID: 2, UserID: 20, Title: "pay rent"},
	}}
	users := &fakeUsers{users: map[int64]*postgres.User{
		10: {ID: 10, Name: "Alice", Email: "alice@example.com"},
		20: {ID: 20, Name: "Bob"}, // no email on file
	}}
	sender := &fakeSender{}

	s := &Service{tasks: tasks, users: users, sender: sender, now: time.Now}
	s.tick(context.Background())

	require.Equal(t, []string{"alice@example.com|call mom"}, sender.sent)
	require.Equal(t, []int64{1}, tasks.notified)
}

func TestTickKeepsTaskOpenWhenSendFails(t *testing.T) {
	tasks := &fakeTasks{due: []postgres.Task{
		{ID: 1, UserID: 10, Title: "call mom"},
	}}
	users := &fakeUsers{users: map[int64]*postgres.User{
		10: {ID: 10, Name: "Alice", Email: "alice@example.com"},
	}}
	sender := &fakeSender{err: context.DeadlineExceeded}

	s := &Service{tasks: tasks, users: users, sender: sender, now: time.Now}
	s.tick(context.Background())

	require.Empty(t, tasks.notified)
}
