package repository

import (
	"context"

	"github.com/gramsetu/loan-advisor/internal/model"
	"gorm.io/gorm"
)

type AssessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db}
}

// CreateAssessment appends one assessment record. Records are insert-only;
// a new assessment always creates a new row.
func (r *AssessmentRepository) CreateAssessment(ctx context.Context, assessment *model.LoanAssessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*model.LoanAssessment, error) {
	var assessment model.LoanAssessment
	err := r.db.WithContext(ctx).First(&assessment, "id = ?", id).Error
	return &assessment, err
}

// FindByUser returns one page of the user's assessment history, newest first,
// along with the total record count.
func (r *AssessmentRepository) FindByUser(ctx context.Context, userID string, page, pageSize int) ([]model.LoanAssessment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.LoanAssessment{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assessments []model.LoanAssessment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&assessments).Error
	return assessments, total, err
}
