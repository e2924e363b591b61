package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/cityreport_bot/config"
)

// EmailStatusSent is the only success value; anything else is the raw
// dispatcher error string ("error: <kind>: <message>").
const EmailStatusSent = "sent"

// Report is one finalized submission plus the outcome of its single mail
// delivery attempt. Rows are append-only: email_status is written once at
// insert time and never back-filled.
type Report struct {
	ID          int       `gorm:"primary_key" json:"id"`
	UserID      int64     `gorm:"index;not null" json:"user_id"`
	Username    string    `gorm:"size:100" json:"username"`
	Description string    `gorm:"size:300;not null" json:"description"`
	PhotoPath   string    `gorm:"size:255;not null" json:"photo_path"`
	Lat         *float64  `json:"lat"`
	Lon         *float64  `json:"lon"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	EmailStatus string    `gorm:"size:255;not null" json:"email_status"`
}

// HasLocation reports whether the submitter attached coordinates. Lat and
// Lon are either both set or both nil; a half-set pair never reaches the
// store.
func (r Report) HasLocation() bool {
	return r.Lat != nil && r.Lon != nil
}

// Store is the durable record store: single-row appends and an owner-scoped
// history query. Both must tolerate concurrent independent callers.
type Store interface {
	Append(ctx context.Context, report *Report) (int, error)
	ListByOwner(ctx context.Context, ownerID int64, limit int) ([]Report, error)
}

// ReportStore is the gorm-backed Store used in production.
type ReportStore struct{}

func NewReportStore() *ReportStore {
	return &ReportStore{}
}

func (s *ReportStore) Append(ctx context.Context, report *Report) (int, error) {
	db := config.GetDB()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(report).Error; err != nil {
		return 0, err
	}
	return report.ID, nil
}

func (s *ReportStore) ListByOwner(ctx context.Context, ownerID int64, limit int) ([]Report, error) {
	db := config.GetDB()
	var reports []Report
	if err := db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id DESC").
		Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// ListAll returns every report, most recent first. Used by the internal
// export surface only.
func (s *ReportStore) ListAll(ctx context.Context) ([]Report, error) {
	db := config.GetDB()
	var reports []Report
	if err := db.WithContext(ctx).Order("id DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
