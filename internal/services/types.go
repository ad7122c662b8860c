package services

import "taskmaster/internal/models"

// ===============================
// USER REQUESTS
// ===============================

// CreateUserRequest registers a new participant.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=320"`
}

// UpdateUserRequest changes a participant's profile fields.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=320"`
}

// APIKeyResponse carries a freshly issued API key. The key is only shown
// once; afterwards it can be rotated but not read back.
type APIKeyResponse struct {
	UserID int64  `json:"user_id"`
	APIKey string `json:"api_key"`
}

// ===============================
// LEDGER REQUESTS
// ===============================

// PointsRequest grants or deducts points. Amount is always positive; the
// operation determines the sign of the stored delta.
type PointsRequest struct {
	Amount  int     `json:"amount" validate:"required,gt=0"`
	Message *string `json:"message,omitempty" validate:"omitempty,max=500"`
}

// PointsResult reports the balance after a ledger mutation.
type PointsResult struct {
	UserID      int64 `json:"user_id"`
	TotalPoints int   `json:"total_points"`
}

// ===============================
// BADGE REQUESTS
// ===============================

// CreateBadgeRequest adds a badge to the catalog.
type CreateBadgeRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Threshold   int     `json:"threshold" validate:"min=0"`
	ImageRef    string  `json:"image_ref" validate:"required,max=255"`
}

// AssignAllResult reports one assignment sweep. Changes contains only users
// whose badge actually changed; Checked counts every user examined.
type AssignAllResult struct {
	Checked int                   `json:"checked"`
	Changes []*models.BadgeChange `json:"changes"`
}

// ===============================
// QUEST REQUESTS
// ===============================

// CreateQuestRequest creates a quest for a user.
type CreateQuestRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Points      int     `json:"points" validate:"required,gt=0"`
	UserID      int64   `json:"user_id" validate:"required,gt=0"`
}

// CompleteQuestResult reports a successful quest completion.
type CompleteQuestResult struct {
	Quest       *models.Quest `json:"quest"`
	TotalPoints int           `json:"total_points"`
}

// ===============================
// NOTIFICATION REQUESTS
// ===============================

// RegisterTokenRequest registers an Expo push token.
type RegisterTokenRequest struct {
	Token string `json:"token" validate:"required,expotoken"`
}

// SendNotificationRequest pushes a message to every registered device.
type SendNotificationRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Body  string `json:"body" validate:"required,max=2000"`
}

// SendEmailRequest relays an email through the configured SMTP host.
type SendEmailRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=255"`
	Body    string `json:"body" validate:"required"`
}

// ===============================
// INGEST MESSAGES
// ===============================

// TagMessage is the broker payload for one NFC tag read.
type TagMessage struct {
	TagID     string `json:"tag_id" validate:"required,max=64"`
	UserName  string `json:"user_name" validate:"required"`
	UserEmail string `json:"user_email" validate:"required,email"`
}
