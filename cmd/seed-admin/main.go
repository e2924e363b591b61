// seed-admin creates or updates the operations console user for the
// internal HTTP API.
//
// Usage:
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//   OPS_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mmdatafocus/cityreport_bot/config"
	"github.com/mmdatafocus/cityreport_bot/models"
	"github.com/mmdatafocus/cityreport_bot/utils"
	"gorm.io/gorm"
)

const (
	defaultUsername = "cityreportOps"
	defaultName     = "CityReport Ops"
)

func main() {
	ctx := context.Background()

	username := os.Getenv("OPS_USERNAME")
	if username == "" {
		username = defaultUsername
	}
	password := os.Getenv("OPS_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "OPS_PASSWORD is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)
	active := true

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u := models.User{
			Username: username,
			Name:     defaultName,
			Password: hashedStr,
			IsActive: &active,
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create ops user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created ops user: username=%q\n", username)
		return
	}

	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Updates(map[string]any{
		"password":  hashedStr,
		"is_active": &active,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update ops user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated ops user: username=%q\n", username)
}
