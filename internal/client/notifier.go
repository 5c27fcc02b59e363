package client

import (
	"context"
	"encoding/json"

	"github.com/questx-lab/contest-backoffice/internal/model"
	"github.com/questx-lab/contest-backoffice/pkg/pubsub"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
)

// Notifier hands winner notifications to the delivery pipeline (email, push).
type Notifier interface {
	NotifyWinner(ctx context.Context, notification *model.WinnerNotification) error
}

type kafkaNotifier struct {
	publisher pubsub.Publisher
}

func NewKafkaNotifier(publisher pubsub.Publisher) *kafkaNotifier {
	return &kafkaNotifier{publisher: publisher}
}

func (n *kafkaNotifier) NotifyWinner(ctx context.Context, notification *model.WinnerNotification) error {
	b, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	return n.publisher.Publish(ctx, xcontext.Configs(ctx).Contest.NotificationTopic, &pubsub.Pack{
		Key: []byte(notification.UserID),
		Msg: b,
	})
}
