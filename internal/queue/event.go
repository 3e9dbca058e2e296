// Package queue defines the message payloads exchanged over the
// broker and the background consumer that drains them.  In a full
// deployment the real notification component consumes the queue; the
// built-in consumer writes a local log file so development runs stay
// observable.
package queue

// Notification kinds.  Booking covers lifecycle transitions
// (confirmed, completed, cancelled); Feedback covers new ratings.
const (
    NotificationTypeBooking  = "booking"
    NotificationTypeFeedback = "feedback"
)

// NotificationEvent is published whenever a booking flow needs to
// tell the (external) notification component something happened.  It
// carries enough information for downstream consumers to deliver the
// message without querying the primary database.
type NotificationEvent struct {
    EventID     string `json:"event_id"`
    RecipientID uint64 `json:"recipient_id"`
    SenderID    uint64 `json:"sender_id"`
    BookingID   uint64 `json:"booking_id"`
    Type        string `json:"type"`
    Text        string `json:"text"`
    SentAt      string `json:"sent_at"`
}
