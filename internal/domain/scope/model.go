package scope

import "time"

// Scope is a user-owned notebook grouping categories and expenses. It can
// be shared with other users through ScopeUser memberships; membership
// never implies ownership.
type Scope struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	OwnerID   string    `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type ScopeUser struct {
	ScopeID   int64     `gorm:"primaryKey"`
	UserID    string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ChildCounts reports how many rows still reference a scope. A scope is
// deletable only when both counts are zero.
type ChildCounts struct {
	Categories int64
	Expenses   int64
}

func (c ChildCounts) Empty() bool {
	return c.Categories == 0 && c.Expenses == 0
}
