package repository

import (
	"context"

	"gorm.io/gorm"

	"caretransit/internal/models"
)

type CompanyStore struct{ db *gorm.DB }

func NewCompanyStore(db *gorm.DB) *CompanyStore { return &CompanyStore{db: db} }

func (s *CompanyStore) ListCompanyIDs(ctx context.Context) ([]models.CompanyID, error) {
	var ids []models.CompanyID
	err := s.db.WithContext(ctx).Model(&models.Company{}).Pluck("id", &ids).Error
	return ids, err
}
