package postgres

import (
	"context"
	"fmt"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db         *gorm.DB
	assessment repositories.AssessmentRepository
	response   repositories.ResponseRepository
}

// NewRepository wires the gorm-backed repositories onto db
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:         db,
		assessment: NewAssessmentPostgreSQL(db),
		response:   NewResponsePostgreSQL(db),
	}
}

func (r *repository) Assessment() repositories.AssessmentRepository { return r.assessment }
func (r *repository) Response() repositories.ResponseRepository     { return r.response }

func (r *repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates the canonical store tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Assessment{}, &models.ResponseRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
