// Package queue defines message payloads exchanged over the message broker
// plus the publisher and consumer that move them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue names. Both are durable and owned by this service.
const (
	VerificationQueueName = "email.verification"
	NotificationQueueName = "ride.notifications"
)

// Notification kinds carried by RideNotificationEvent.
const (
	KindRequestReceived = "request.received"
	KindRequestAccepted = "request.accepted"
	KindRequestRejected = "request.rejected"
	KindRideStarted     = "ride.started"
	KindRideEnded       = "ride.ended"
)

// VerificationEmailEvent asks the mail worker to deliver a one-time code.
// The plaintext code travels only over the broker; the database stores a
// bcrypt hash.
type VerificationEmailEvent struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Code   string `json:"code"`
	SentAt string `json:"sent_at"`
}

// RideNotificationEvent tells downstream consumers about a ride lifecycle
// change that concerns a specific user. It carries enough to notify without
// querying the primary database.
type RideNotificationEvent struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	RideID     uint64 `json:"ride_id"`
	UserID     uint64 `json:"user_id"`
	Message    string `json:"message"`
	OccurredAt string `json:"occurred_at"`
}

// NewVerificationEmailEvent stamps a fresh event with id and send time.
func NewVerificationEmailEvent(email, code string, at time.Time) VerificationEmailEvent {
	return VerificationEmailEvent{
		ID:     uuid.NewString(),
		Email:  email,
		Code:   code,
		SentAt: at.UTC().Format(time.RFC3339),
	}
}

// NewRideNotificationEvent stamps a fresh notification for one user.
func NewRideNotificationEvent(kind string, rideID, userID uint64, message string, at time.Time) RideNotificationEvent {
	return RideNotificationEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		RideID:     rideID,
		UserID:     userID,
		Message:    message,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
}
