package domain

import "time"

// Turn is one message in a conversation.
type Turn struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Event is the activity a badge evaluation is triggered by.
// MessageCount is the number of successful learner turns in the current session.
type Event struct {
	Category     EventCategory
	MessageCount int
}
