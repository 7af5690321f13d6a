package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// LoanProduct is a catalog entry matched against the stated loan purpose via
// embedding similarity.
type LoanProduct struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(100);uniqueIndex" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	MinAmount   float64         `gorm:"type:numeric" json:"min_amount"`
	MaxAmount   float64         `gorm:"type:numeric" json:"max_amount"`
	Embedding   pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *LoanProduct) TableName() string {
	return "loan_products"
}

func (p *LoanProduct) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
