package expense

import "time"

type Category struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	ScopeID   int64     `gorm:"index;not null"`
	Expenses  []Expense `gorm:"foreignKey:CategoryID"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Expense is a single dated monetary entry. Value is a signed float: the
// sign encodes income vs cost, exactly as recorded by clients. Date carries
// no time-of-day component.
type Expense struct {
	ID         int64     `gorm:"primaryKey"`
	CategoryID int64     `gorm:"index;not null"`
	Category   *Category `gorm:"foreignKey:CategoryID"`
	ScopeID    int64     `gorm:"index;not null"`
	Date       time.Time `gorm:"type:date;not null"`
	Comment    string    `gorm:"size:1024;not null"`
	Value      float64   `gorm:"not null"`
	Details    string    `gorm:"size:1024"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// Item is a listed expense with its display hints attached. IsDuplicate
// marks members of same-(date,value) groups within one listing; it never
// blocks writes.
type Item struct {
	Expense
	IsDuplicate bool
}

type CreateExpenseInput struct {
	ScopeID    int64
	CategoryID int64
	Date       time.Time
	Comment    string
	Value      float64
	Details    string
}

type UpdateExpenseInput struct {
	ID         int64
	ScopeID    int64
	CategoryID int64
	Date       time.Time
	Comment    string
	Value      float64
	Details    string
}

// DateOnly strips the time-of-day component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
