package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationInfo        NotificationType = "INFO"
	NotificationWarning     NotificationType = "WARNING"
	NotificationError       NotificationType = "ERROR"
	NotificationSuccess     NotificationType = "SUCCESS"
	NotificationTransaction NotificationType = "TRANSACTION"
	NotificationSecurity    NotificationType = "SECURITY"
	NotificationPromotion   NotificationType = "PROMOTION"
)

// NotificationPriority orders notifications for display.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "LOW"
	PriorityNormal NotificationPriority = "NORMAL"
	PriorityHigh   NotificationPriority = "HIGH"
	PriorityUrgent NotificationPriority = "URGENT"
)

// NotificationTTL is how long a non-urgent notification is kept.
const NotificationTTL = 30 * 24 * time.Hour

// Notification is an in-app message addressed to one user.
type Notification struct {
	NotificationID string               `json:"notificationID"`
	UserID         string               `json:"userID"`
	Title          string               `json:"title"`
	Message        string               `json:"message"`
	Type           NotificationType     `json:"type"`
	Priority       NotificationPriority `json:"priority"`
	IsRead         bool                 `json:"isRead"`
	ReadAt         *time.Time           `json:"readAt,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	ExpiresAt      *time.Time           `json:"expiresAt,omitempty"`
}

// NotificationEvent is the outbound message asking for a notification to be delivered.
type NotificationEvent struct {
	EventID    string               `json:"eventID"`
	UserID     string               `json:"userID"`
	Title      string               `json:"title"`
	Message    string               `json:"message"`
	Type       NotificationType     `json:"type"`
	Priority   NotificationPriority `json:"priority"`
	OccurredAt time.Time            `json:"occurredAt"`
}

// RoutingKey is the AMQP routing key for the event.
func (e NotificationEvent) RoutingKey() string {
	return "notification." + strings.ToLower(string(e.Type))
}

// ToNotification materializes the event as an inbox entry.
func (e NotificationEvent) ToNotification(now time.Time) Notification {
	n := Notification{
		NotificationID: e.EventID,
		UserID:         e.UserID,
		Title:          e.Title,
		Message:        e.Message,
		Type:           e.Type,
		Priority:       e.Priority,
		CreatedAt:      now,
	}
	if e.Priority != PriorityUrgent {
		expires := now.Add(NotificationTTL)
		n.ExpiresAt = &expires
	}
	return n
}

// Transaction notification topics.
const (
	TopicTransferSent           = "TRANSFER_SENT"
	TopicTransferReceived       = "TRANSFER_RECEIVED"
	TopicCryptoTransferSent     = "CRYPTO_TRANSFER_SENT"
	TopicCryptoTransferReceived = "CRYPTO_TRANSFER_RECEIVED"
)

// TransactionNotification renders the message for a transaction topic.
func TransactionNotification(userID, transactionID, amount, topic string) NotificationEvent {
	var title, message string
	switch topic {
	case TopicTransferSent:
		title = "Transfer Sent"
		message = fmt.Sprintf("You have successfully sent %s MAD to another account. Transaction ID: %s", amount, transactionID)
	case TopicTransferReceived:
		title = "Transfer Received"
		message = fmt.Sprintf("You have received %s MAD from another account. Transaction ID: %s", amount, transactionID)
	case TopicCryptoTransferSent:
		title = "Crypto Transfer Sent"
		message = fmt.Sprintf("You have successfully sent %s cryptocurrency. Transaction ID: %s", amount, transactionID)
	case TopicCryptoTransferReceived:
		title = "Crypto Transfer Received"
		message = fmt.Sprintf("You have received %s cryptocurrency. Transaction ID: %s", amount, transactionID)
	default:
		title = "Transaction " + topic
		message = fmt.Sprintf("Your %s transaction of %s MAD has been processed. Transaction ID: %s",
			strings.ToLower(topic), amount, transactionID)
	}
	return NotificationEvent{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Type:     NotificationTransaction,
		Priority: PriorityNormal,
	}
}

// SecurityNotification renders a security alert.
func SecurityNotification(userID, action, details string) NotificationEvent {
	return NotificationEvent{
		UserID: userID,
		Title:  "Security Alert: " + action,
		Message: fmt.Sprintf("Security action detected: %s. Details: %s. If this wasn't you, please contact support immediately.",
			action, details),
		Type:     NotificationSecurity,
		Priority: PriorityHigh,
	}
}

// InfoNotification renders a plain informational message.
func InfoNotification(userID, title, message string) NotificationEvent {
	return NotificationEvent{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Type:     NotificationInfo,
		Priority: PriorityNormal,
	}
}

// OutboxStatus is the delivery state of an outbox row.
type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxPublished  OutboxStatus = "published"
)

// OutboxMessage is a claimed row of the event outbox.
type OutboxMessage struct {
	ID         int64
	EventID    string
	Exchange   string
	RoutingKey string
	Payload    []byte
	Attempts   int
}
