package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres and migrates the schema.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(log).LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	log.Info("database connected")
	return db, nil
}

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Users) Create(ctx context.Context, u *User) error {
	u.Email = normalizeEmail(u.Email)
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Users) List(ctx context.Context) ([]User, error) {
	var users []User
	err := s.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, translate(err)
}

func (s *Users) Get(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Users) Update(ctx context.Context, id uint, upd UserUpdate) (*User, error) {
	changes := map[string]any{}
	if upd.Name != nil {
		changes["name"] = *upd.Name
	}
	if upd.Email != nil {
		changes["email"] = normalizeEmail(*upd.Email)
	}
	if upd.HashedPassword != nil {
		changes["hashed_password"] = *upd.HashedPassword
	}

	var u User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&u).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&u, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Delete removes the row outright so the email can sign up again.
func (s *Users) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&User{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertOAuth creates or refreshes the user a provider vouched for, keyed
// by email.
func (s *Users) UpsertOAuth(ctx context.Context, in User) (*User, error) {
	in.Email = normalizeEmail(in.Email)

	var u User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", in.Email).First(&u).Error
		switch {
		case err == nil:
			changes := map[string]any{"oauth_token": in.OAuthToken}
			u.OAuthToken = in.OAuthToken
			if in.Name != "" {
				changes["name"] = in.Name
				u.Name = in.Name
			}
			if in.AccessToken != nil {
				changes["access_token"] = *in.AccessToken
				u.AccessToken = in.AccessToken
			}
			return tx.Model(&u).Updates(changes).Error
		case translate(err) == ErrNotFound:
			u = in
			if u.Name == "" {
				u.Name = u.Email
			}
			return tx.Create(&u).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ClearAccessToken signs a mobile user out by dropping their stored token.
func (s *Users) ClearAccessToken(ctx context.Context, accessToken string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("access_token = ?", accessToken).First(&u).Error; err != nil {
			return err
		}
		if err := tx.Model(&u).Update("access_token", nil).Error; err != nil {
			return err
		}
		u.AccessToken = nil
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
