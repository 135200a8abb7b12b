package user

import (
	"context"
	"errors"
	"time"

	userdomain "expenses-app-go/internal/domain/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(userdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetUser(ctx context.Context, userID string) (*userdomain.User, error) {
	var u userdomain.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) CreateUserIfAbsent(ctx context.Context, u *userdomain.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(u).Error
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, u *userdomain.User) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&userdomain.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"email":      u.Email,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) SetSelectedScope(ctx context.Context, userID string, scopeID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userCount int64
		if err := tx.Model(&userdomain.User{}).Where("id = ?", userID).Count(&userCount).Error; err != nil {
			return err
		}
		if userCount == 0 {
			return userdomain.ErrUserNotFound
		}

		var scopeCount int64
		if err := tx.Table("scopes").Where("id = ?", scopeID).Count(&scopeCount).Error; err != nil {
			return err
		}
		if scopeCount == 0 {
			return userdomain.ErrScopeNotFound
		}

		return tx.Model(&userdomain.User{}).
			Where("id = ?", userID).
			Update("selected_scope_id", scopeID).Error
	})
}
