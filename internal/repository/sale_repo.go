package repository

import (
	"time"

	"github.com/adiah-react/oxis-sales/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	FindAll() ([]model.Sale, error)
	FindByID(id uuid.UUID) (*model.Sale, error)
	GetSalesStats() (*SalesStats, error)
	GetItemSales(startDate, endDate time.Time) ([]ItemSales, error)
	GetTopProducts(limit int) ([]ItemSales, error)
}

// SalesStats is the ledger side of the dashboard overview.
type SalesStats struct {
	TotalRevenue float64 `json:"total_revenue"`
	SaleCount    int64   `json:"sale_count"`
	ItemsSold    int64   `json:"items_sold"`
}

// ItemSales aggregates ledger lines per product.
type ItemSales struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"product_name"`
	Quantity  int64     `json:"quantity"`
	Revenue   float64   `json:"revenue"`
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create appends one sale with its item snapshots. Joins the outer commit
// transaction so the ledger entry is written only if every stock decrement
// held.
func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return r.conn(tx).Create(sale).Error
}

func (r *saleRepo) FindAll() ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Preload("Items").Preload("Person").Order("date DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").Preload("Person").First(&sale, "id = ?", id).Error
	return &sale, err
}

func (r *saleRepo) GetSalesStats() (*SalesStats, error) {
	var stats SalesStats

	if err := r.db.Model(&model.Sale{}).
		Select("COALESCE(SUM(total), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Sale{}).Count(&stats.SaleCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.SaleItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&stats.ItemsSold).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetItemSales aggregates quantity and revenue per product over the period,
// most revenue first.
func (r *saleRepo) GetItemSales(startDate, endDate time.Time) ([]ItemSales, error) {
	var results []ItemSales

	rows, err := r.db.Model(&model.SaleItem{}).
		Select(`
			sale_items.product_id,
			sale_items.name,
			COALESCE(SUM(sale_items.quantity), 0) as quantity,
			COALESCE(SUM(sale_items.unit_price * sale_items.quantity), 0) as revenue
		`).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.date BETWEEN ? AND ?", startDate, endDate).
		Group("sale_items.product_id, sale_items.name").
		Order("revenue DESC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data ItemSales
		if err := rows.Scan(&data.ProductID, &data.Name, &data.Quantity, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

// GetTopProducts returns the best sellers by units sold across the whole
// ledger.
func (r *saleRepo) GetTopProducts(limit int) ([]ItemSales, error) {
	var results []ItemSales

	rows, err := r.db.Model(&model.SaleItem{}).
		Select(`
			sale_items.product_id,
			sale_items.name,
			COALESCE(SUM(sale_items.quantity), 0) as quantity,
			COALESCE(SUM(sale_items.unit_price * sale_items.quantity), 0) as revenue
		`).
		Group("sale_items.product_id, sale_items.name").
		Order("quantity DESC").
		Limit(limit).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data ItemSales
		if err := rows.Scan(&data.ProductID, &data.Name, &data.Quantity, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
