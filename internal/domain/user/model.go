package user

import "time"

// User is the local row for an identity-provider subject. Rows are
// provisioned lazily: the first scope a subject creates, or the first
// membership granted to them, materializes the row.
type User struct {
	ID              string `gorm:"primaryKey"`
	UserName        string `gorm:"not null"`
	FirstName       string `gorm:"not null"`
	LastName        string `gorm:"not null"`
	Email           string `gorm:"not null"`
	SelectedScopeID *int64
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// DirectoryUser is a profile fetched from the remote user directory. It is
// never persisted locally; the directory stays the source of truth.
type DirectoryUser struct {
	ID        string `json:"id"`
	UserName  string `json:"userName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type UpdateProfileInput struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
}
