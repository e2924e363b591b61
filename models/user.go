package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/cityreport_bot/config"
	"github.com/mmdatafocus/cityreport_bot/utils"
	"gorm.io/gorm"
)

// User is an operations-console account for the internal HTTP surface.
// Telegram end users are never represented here; they are identified by
// chat id only.
type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsActive  *bool     `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

var ErrorInvalidCredentials = errors.New("invalid username or password")

// Login validates the credentials and returns a signed JWT.
func Login(ctx context.Context, username string, password string) (string, error) {
	db := config.GetDB()

	var user User
	if err := db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrorInvalidCredentials
		}
		return "", err
	}
	if user.IsActive == nil || !*user.IsActive {
		return "", ErrorInvalidCredentials
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return "", ErrorInvalidCredentials
	}

	return utils.JwtGenerate(user.ID, user.Username)
}
