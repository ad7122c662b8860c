package events

import "time"

// Event type names published by the services.
const (
	TypeUserCreated    = "user.created"
	TypeUserUpdated    = "user.updated"
	TypeUserDeleted    = "user.deleted"
	TypePointsGranted  = "points.granted"
	TypePointsDeducted = "points.deducted"
	TypeQuestCreated   = "quest.created"
	TypeQuestCompleted = "quest.completed"
	TypeBadgeAssigned  = "badge.assigned"
	TypeBadgeCleared   = "badge.cleared"
	TypeTagArrived     = "tag.arrived"
)

// ===============================
// USER EVENTS
// ===============================

type UserCreatedEvent struct {
	BaseEvent
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewUserCreatedEvent(userID int64, email, name string) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypeUserCreated,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		Email: email,
		Name:  name,
	}
}

type UserUpdatedEvent struct {
	BaseEvent
	Changes []string `json:"changes"`
}

func NewUserUpdatedEvent(userID int64, changes []string) *UserUpdatedEvent {
	return &UserUpdatedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypeUserUpdated,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		Changes: changes,
	}
}

type UserDeletedEvent struct {
	BaseEvent
	Email string `json:"email"`
}

func NewUserDeletedEvent(userID int64, email string) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypeUserDeleted,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		Email: email,
	}
}

// ===============================
// POINTS EVENTS
// ===============================

// PointsGrantedEvent is emitted after a grant has been committed. NewTotal
// carries the clamped balance, Delta the raw requested amount.
type PointsGrantedEvent struct {
	BaseEvent
	Delta    int64  `json:"delta"`
	NewTotal int64  `json:"new_total"`
	Message  string `json:"message,omitempty"`
}

func NewPointsGrantedEvent(userID, delta, newTotal int64, message string) *PointsGrantedEvent {
	return &PointsGrantedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypePointsGranted,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		Delta:    delta,
		NewTotal: newTotal,
		Message:  message,
	}
}

type PointsDeductedEvent struct {
	BaseEvent
	Delta    int64  `json:"delta"`
	NewTotal int64  `json:"new_total"`
	Message  string `json:"message,omitempty"`
}

func NewPointsDeductedEvent(userID, delta, newTotal int64, message string) *PointsDeductedEvent {
	return &PointsDeductedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypePointsDeducted,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		Delta:    delta,
		NewTotal: newTotal,
		Message:  message,
	}
}

// ===============================
// QUEST EVENTS
// ===============================

type QuestCreatedEvent struct {
	BaseEvent
	QuestID int64  `json:"quest_id"`
	Title   string `json:"title"`
	Points  int64  `json:"points"`
}

func NewQuestCreatedEvent(questID, userID, points int64, title string) *QuestCreatedEvent {
	return &QuestCreatedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypeQuestCreated,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		QuestID: questID,
		Title:   title,
		Points:  points,
	}
}

type QuestCompletedEvent struct {
	BaseEvent
	QuestID  int64  `json:"quest_id"`
	Title    string `json:"title"`
	Points   int64  `json:"points"`
	NewTotal int64  `json:"new_total"`
}

func NewQuestCompletedEvent(questID, userID, points, newTotal int64, title string) *QuestCompletedEvent {
	return &QuestCompletedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypeQuestCompleted,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		QuestID:  questID,
		Title:    title,
		Points:   points,
		NewTotal: newTotal,
	}
}

// ===============================
// BADGE EVENTS
// ===============================

// BadgeAssignedEvent is emitted once per user whose badge changed during an
// assignment sweep. Cleared sweeps emit TypeBadgeCleared with an empty name.
type BadgeAssignedEvent struct {
	BaseEvent
	BadgeName string `json:"badge_name,omitempty"`
	Cleared   bool   `json:"cleared"`
}

func NewBadgeAssignedEvent(userID int64, badgeName string) *BadgeAssignedEvent {
	return &BadgeAssignedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypeBadgeAssigned,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		BadgeName: badgeName,
	}
}

func NewBadgeClearedEvent(userID int64) *BadgeAssignedEvent {
	return &BadgeAssignedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypeBadgeCleared,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		Cleared: true,
	}
}

// ===============================
// NFC EVENTS
// ===============================

// TagArrivedEvent is emitted when the ingest consumer stores a new NFC tag.
type TagArrivedEvent struct {
	BaseEvent
	TagID     string `json:"tag_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

func NewTagArrivedEvent(tagID, userName, userEmail string) *TagArrivedEvent {
	return &TagArrivedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypeTagArrived,
			Timestamp: time.Now(),
		},
		TagID:     tagID,
		UserName:  userName,
		UserEmail: userEmail,
	}
}
