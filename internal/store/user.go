package store

import (
	"strconv"
	"time"
)

type User struct {
	ID                      uint       `json:"_id" gorm:"primaryKey"`
	Name                    string     `json:"name" gorm:"not null"`
	Email                   string     `json:"email" gorm:"uniqueIndex;not null"`
	HashedPassword          string     `json:"-"`
	OAuthToken              string     `json:"-" gorm:"column:oauth_token;index"`
	AccessToken             *string    `json:"accessToken,omitempty" gorm:"index"`
	ResetPasswordToken      string     `json:"-"`
	ResetPasswordExpires    *time.Time `json:"-"`
	ConfirmEmailToken       string     `json:"-"`
	ConfirmEmailTokenExpire *time.Time `json:"-"`
	CreatedAt               time.Time  `json:"created"`
	UpdatedAt               time.Time  `json:"updated"`
}

// PublicID is the user id as carried in session tokens.
func (u *User) PublicID() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}

// UserUpdate lists the fields a PUT may change. Nil means unchanged.
type UserUpdate struct {
	Name           *string
	Email          *string
	HashedPassword *string
}
