package repository

import (
	"github.com/adiah-react/oxis-sales/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByName(name string) (*model.Product, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	Update(tx *gorm.DB, product *model.Product) error
	Delete(id uuid.UUID) error
	DecrementStock(tx *gorm.DB, id uuid.UUID, quantity int) (int64, error)
	IncrementStock(tx *gorm.DB, id uuid.UUID, amount int) error
	GetInventoryStats() (*InventoryStats, error)
}

// InventoryStats is the catalog side of the dashboard overview.
type InventoryStats struct {
	TotalProducts  int64   `json:"total_products"`
	LowStockCount  int64   `json:"low_stock_count"`
	TotalValuation float64 `json:"total_valuation"`
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// conn lets stock mutations join an outer transaction when one is given.
func (r *productRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindByName(name string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "name = ?", name).Error
	return &product, err
}

// FindForUpdate locks the row for the duration of the surrounding transaction.
func (r *productRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.conn(tx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	return &product, err
}

// Update joins an outer transaction when one is given, so a row locked via
// FindForUpdate is written back on the same connection.
func (r *productRepo) Update(tx *gorm.DB, product *model.Product) error {
	return r.conn(tx).Save(product).Error
}

func (r *productRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock applies the guarded atomic decrement: stock is reduced only
// when enough remains, so concurrent commits against the same product can
// never drive it negative. Returns the number of rows updated (0 means the
// guard failed or the id did not resolve).
func (r *productRepo) DecrementStock(tx *gorm.DB, id uuid.UUID, quantity int) (int64, error) {
	res := r.conn(tx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	return res.RowsAffected, res.Error
}

// IncrementStock applies an unconditional atomic increment (restock).
func (r *productRepo) IncrementStock(tx *gorm.DB, id uuid.UUID, amount int) error {
	res := r.conn(tx).Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) GetInventoryStats() (*InventoryStats, error) {
	var stats InventoryStats

	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).
		Where("stock <= low_stock_threshold").
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).
		Select("COALESCE(SUM(stock * price), 0)").
		Scan(&stats.TotalValuation).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
