package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/contest-backoffice/internal/model"
)

// MockNotifier records every notification it receives. NotifyWinnerFunc, if
// set, decides the returned error.
type MockNotifier struct {
	NotifyWinnerFunc func(ctx context.Context, notification *model.WinnerNotification) error

	mutex         sync.Mutex
	notifications []model.WinnerNotification
}

func (m *MockNotifier) NotifyWinner(ctx context.Context, notification *model.WinnerNotification) error {
	m.mutex.Lock()
	m.notifications = append(m.notifications, *notification)
	m.mutex.Unlock()

	if m.NotifyWinnerFunc != nil {
		return m.NotifyWinnerFunc(ctx, notification)
	}

	return nil
}

func (m *MockNotifier) Notifications() []model.WinnerNotification {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]model.WinnerNotification{}, m.notifications...)
}
