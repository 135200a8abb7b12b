package expense

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	ListCategories(ctx context.Context, scopeID int64, includeExpenses bool) ([]Category, error)
	GetCategory(ctx context.Context, categoryID int64, includeExpenses bool) (*Category, error)
	CountCategoriesByName(ctx context.Context, scopeID int64, name string) (int64, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategoryName(ctx context.Context, categoryID int64, name string) (bool, error)
	// DeleteCategoryIfUnused deletes in a single statement guarded by the
	// absence of referencing expenses.
	DeleteCategoryIfUnused(ctx context.Context, categoryID int64) (bool, error)
	CountExpensesByCategory(ctx context.Context, categoryID int64) (int64, error)

	// ListExpensesByRange selects expenses with start <= date < end.
	ListExpensesByRange(ctx context.Context, scopeID int64, start, end time.Time) ([]Expense, error)
	GetExpense(ctx context.Context, expenseID int64) (*Expense, error)
	GetExpensesByIDs(ctx context.Context, ids []int64) ([]Expense, error)
	CreateExpense(ctx context.Context, expense *Expense) error
	CreateExpenses(ctx context.Context, expenses []*Expense) error
	UpdateExpense(ctx context.Context, expense *Expense) (bool, error)
	// Deletes are confined to one scope so a caller can never remove rows
	// from a scope other than their selected one.
	DeleteExpense(ctx context.Context, scopeID, expenseID int64) (bool, error)
	DeleteExpensesByIDs(ctx context.Context, scopeID int64, ids []int64) error
}
