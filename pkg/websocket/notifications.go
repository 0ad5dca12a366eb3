package websocket

import (
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/metrics"
	json "github.com/json-iterator/go"
)

// NotificationTopic is the channel carrying notifications for one recipient.
func NotificationTopic(userID string) string {
	return "realtime:notifications:" + userID
}

// SubscribeNotifications joins the recipient channel of userID and calls fn
// for every inserted notification addressed to that user. The returned func
// removes the listener and leaves the channel.
func SubscribeNotifications(c *Client, userID string, fn func(Notification)) (func(), error) {
	topic := NotificationTopic(userID)

	off := c.On(EventPostgresChanges, func(t string, payload json.RawMessage) {
		if t != topic {
			return
		}
		var change ChangePayload
		if err := json.Unmarshal(payload, &change); err != nil {
			logger.Warn("Dropping malformed notification change", "error", err)
			return
		}
		if change.Data.Type != "INSERT" {
			return
		}
		var n Notification
		if err := json.Unmarshal(change.Data.Record, &n); err != nil {
			logger.Warn("Dropping malformed notification record", "error", err)
			return
		}
		// Server-side filtering is advisory; never surface another user's rows.
		if n.UserID != userID {
			return
		}
		metrics.NotificationsReceived.WithLabelValues(n.Type).Inc()
		fn(n)
	})

	err := c.Join(topic, ChangeFilter{
		Event:  "INSERT",
		Schema: "public",
		Table:  "notifications",
		Filter: "user_id=eq." + userID,
	})
	if err != nil {
		off()
		return nil, err
	}

	return func() {
		off()
		if err := c.Leave(topic); err != nil {
			logger.Debug("Failed to leave channel", "topic", topic, "error", err)
		}
	}, nil
}
