package scope

import (
	"context"
	"errors"

	scopedomain "expenses-app-go/internal/domain/scope"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(scopedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetScope(ctx context.Context, scopeID int64) (*scopedomain.Scope, error) {
	var sc scopedomain.Scope
	if err := r.db.WithContext(ctx).Where("id = ?", scopeID).First(&sc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scopedomain.ErrScopeNotFound
		}
		return nil, err
	}
	return &sc, nil
}

func (r *PostgresRepository) ListScopesByUser(ctx context.Context, userID string) ([]scopedomain.Scope, error) {
	var scopes []scopedomain.Scope
	if err := r.db.WithContext(ctx).
		Table("scopes").
		Select("DISTINCT scopes.*").
		Joins("left join scope_users on scope_users.scope_id = scopes.id").
		Where("scopes.owner_id = ? OR scope_users.user_id = ?", userID, userID).
		Order("scopes.id asc").
		Find(&scopes).Error; err != nil {
		return nil, err
	}
	return scopes, nil
}

func (r *PostgresRepository) CountScopesByName(ctx context.Context, ownerID, name string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&scopedomain.Scope{}).
		Where("owner_id = ? AND name = ?", ownerID, name).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CreateScope(ctx context.Context, sc *scopedomain.Scope) error {
	return r.db.WithContext(ctx).Create(sc).Error
}

func (r *PostgresRepository) UpdateScopeName(ctx context.Context, scopeID int64, name string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&scopedomain.Scope{}).
		Where("id = ?", scopeID).
		Update("name", name)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) DeleteScopeIfEmpty(ctx context.Context, scopeID int64) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM scopes
		WHERE id = ?
		  AND NOT EXISTS (SELECT 1 FROM categories WHERE categories.scope_id = scopes.id)
		  AND NOT EXISTS (SELECT 1 FROM expenses WHERE expenses.scope_id = scopes.id)
	`, scopeID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) ChildCounts(ctx context.Context, scopeID int64) (scopedomain.ChildCounts, error) {
	var counts scopedomain.ChildCounts
	if err := r.db.WithContext(ctx).
		Table("categories").
		Where("scope_id = ?", scopeID).
		Count(&counts.Categories).Error; err != nil {
		return scopedomain.ChildCounts{}, err
	}
	if err := r.db.WithContext(ctx).
		Table("expenses").
		Where("scope_id = ?", scopeID).
		Count(&counts.Expenses).Error; err != nil {
		return scopedomain.ChildCounts{}, err
	}
	return counts, nil
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *scopedomain.ScopeUser) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, scopeID int64, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Delete(&scopedomain.ScopeUser{}, "scope_id = ? AND user_id = ?", scopeID, userID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) ListMembers(ctx context.Context, scopeID int64) ([]scopedomain.ScopeUser, error) {
	var members []scopedomain.ScopeUser
	if err := r.db.WithContext(ctx).
		Where("scope_id = ?", scopeID).
		Order("created_at asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) IsMember(ctx context.Context, scopeID int64, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&scopedomain.ScopeUser{}).
		Where("scope_id = ? AND user_id = ?", scopeID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
