package expense

import (
	"context"
	"errors"
	"time"

	expensedomain "expenses-app-go/internal/domain/expense"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(expensedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListCategories(ctx context.Context, scopeID int64, includeExpenses bool) ([]expensedomain.Category, error) {
	query := r.db.WithContext(ctx).Where("scope_id = ?", scopeID).Order("id asc")
	if includeExpenses {
		query = query.Preload("Expenses")
	}

	var categories []expensedomain.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *PostgresRepository) GetCategory(ctx context.Context, categoryID int64, includeExpenses bool) (*expensedomain.Category, error) {
	query := r.db.WithContext(ctx).Where("id = ?", categoryID)
	if includeExpenses {
		query = query.Preload("Expenses")
	}

	var category expensedomain.Category
	if err := query.First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, expensedomain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *PostgresRepository) CountCategoriesByName(ctx context.Context, scopeID int64, name string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&expensedomain.Category{}).
		Where("scope_id = ? AND name = ?", scopeID, name).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, category *expensedomain.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *PostgresRepository) UpdateCategoryName(ctx context.Context, categoryID int64, name string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&expensedomain.Category{}).
		Where("id = ?", categoryID).
		Update("name", name)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) DeleteCategoryIfUnused(ctx context.Context, categoryID int64) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM categories
		WHERE id = ?
		  AND NOT EXISTS (SELECT 1 FROM expenses WHERE expenses.category_id = categories.id)
	`, categoryID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) CountExpensesByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&expensedomain.Expense{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) ListExpensesByRange(ctx context.Context, scopeID int64, start, end time.Time) ([]expensedomain.Expense, error) {
	var expenses []expensedomain.Expense
	if err := r.db.WithContext(ctx).
		Where("scope_id = ? AND date >= ? AND date < ?", scopeID, start, end).
		Preload("Category").
		Order("date asc, id asc").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *PostgresRepository) GetExpense(ctx context.Context, expenseID int64) (*expensedomain.Expense, error) {
	var e expensedomain.Expense
	if err := r.db.WithContext(ctx).
		Where("id = ?", expenseID).
		Preload("Category").
		First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, expensedomain.ErrExpenseNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PostgresRepository) GetExpensesByIDs(ctx context.Context, ids []int64) ([]expensedomain.Expense, error) {
	if len(ids) == 0 {
		return []expensedomain.Expense{}, nil
	}

	var expenses []expensedomain.Expense
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Preload("Category").
		Order("id asc").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *PostgresRepository) CreateExpense(ctx context.Context, e *expensedomain.Expense) error {
	return r.db.WithContext(ctx).Omit("Category").Create(e).Error
}

func (r *PostgresRepository) CreateExpenses(ctx context.Context, expenses []*expensedomain.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Category").Create(&expenses).Error
}

func (r *PostgresRepository) UpdateExpense(ctx context.Context, e *expensedomain.Expense) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&expensedomain.Expense{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"category_id": e.CategoryID,
			"date":        e.Date,
			"comment":     e.Comment,
			"value":       e.Value,
			"details":     e.Details,
			"updated_at":  time.Now().UTC(),
		})
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) DeleteExpense(ctx context.Context, scopeID, expenseID int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&expensedomain.Expense{}, "id = ? AND scope_id = ?", expenseID, scopeID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) DeleteExpensesByIDs(ctx context.Context, scopeID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&expensedomain.Expense{}, "id IN ? AND scope_id = ?", ids, scopeID).Error
}
