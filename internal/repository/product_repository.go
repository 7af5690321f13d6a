package repository

import (
	"context"

	"github.com/gramsetu/loan-advisor/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db}
}

// SearchProducts returns the topK catalog entries nearest to the given
// embedding (pgvector distance).
func (r *ProductRepository) SearchProducts(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.LoanProduct, error) {
	var products []model.LoanProduct
	err := r.db.WithContext(ctx).Raw(`
        SELECT *, embedding <-> ? AS distance
        FROM loan_products
        ORDER BY embedding <-> ?
        LIMIT ?
    `, embedding, embedding, topK).Scan(&products).Error
	return products, err
}

// UpsertProduct inserts or refreshes a catalog entry keyed by name.
func (r *ProductRepository) UpsertProduct(ctx context.Context, product *model.LoanProduct) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"description", "min_amount", "max_amount", "embedding", "updated_at",
		}),
	}).Create(product).Error
}

func (r *ProductRepository) GetProducts(ctx context.Context) ([]model.LoanProduct, error) {
	var products []model.LoanProduct
	err := r.db.WithContext(ctx).Order("name").Find(&products).Error
	return products, err
}
