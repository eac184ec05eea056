package service

import (
	"errors"
	"time"

	"github.com/adiah-react/oxis-sales/internal/repository"
)

var ErrInvalidRange = errors.New("invalid range, use daily, weekly, or monthly")

// DashboardStats merges ledger and catalog aggregates for the overview
// screen.
type DashboardStats struct {
	TotalRevenue      float64 `json:"total_revenue"`
	SaleCount         int64   `json:"sale_count"`
	ItemsSold         int64   `json:"items_sold"`
	AverageOrderValue float64 `json:"average_order_value"`
	TotalProducts     int64   `json:"total_products"`
	LowStockCount     int64   `json:"low_stock_count"`
	TotalValuation    float64 `json:"total_valuation"`
}

// ItemSalesReport is the per-product breakdown over one period.
type ItemSalesReport struct {
	Range         string                 `json:"range"`
	StartDate     time.Time              `json:"start_date"`
	EndDate       time.Time              `json:"end_date"`
	TotalRevenue  float64                `json:"total_revenue"`
	TotalQuantity int64                  `json:"total_quantity"`
	Items         []repository.ItemSales `json:"items"`
}

type AnalyticsService interface {
	GetDashboardStats() (*DashboardStats, error)
	GetItemSales(rangeType string, reference time.Time) (*ItemSalesReport, error)
	GetTopProducts(limit int) ([]repository.ItemSales, error)
}

type analyticsService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
}

func NewAnalyticsService(sRepo repository.SaleRepository, pRepo repository.ProductRepository) AnalyticsService {
	return &analyticsService{
		saleRepo:    sRepo,
		productRepo: pRepo,
	}
}

func (s *analyticsService) GetDashboardStats() (*DashboardStats, error) {
	sales, err := s.saleRepo.GetSalesStats()
	if err != nil {
		return nil, err
	}
	inventory, err := s.productRepo.GetInventoryStats()
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalRevenue:   sales.TotalRevenue,
		SaleCount:      sales.SaleCount,
		ItemsSold:      sales.ItemsSold,
		TotalProducts:  inventory.TotalProducts,
		LowStockCount:  inventory.LowStockCount,
		TotalValuation: inventory.TotalValuation,
	}
	if sales.SaleCount > 0 {
		stats.AverageOrderValue = sales.TotalRevenue / float64(sales.SaleCount)
	}
	return stats, nil
}

func (s *analyticsService) GetItemSales(rangeType string, reference time.Time) (*ItemSalesReport, error) {
	start, end, err := PeriodRange(rangeType, reference)
	if err != nil {
		return nil, err
	}

	items, err := s.saleRepo.GetItemSales(start, end)
	if err != nil {
		return nil, err
	}

	report := &ItemSalesReport{
		Range:     rangeType,
		StartDate: start,
		EndDate:   end,
		Items:     items,
	}
	for _, item := range items {
		report.TotalRevenue += item.Revenue
		report.TotalQuantity += item.Quantity
	}
	return report, nil
}

func (s *analyticsService) GetTopProducts(limit int) ([]repository.ItemSales, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.saleRepo.GetTopProducts(limit)
}

// PeriodRange computes the inclusive window around a reference date:
// daily covers that calendar day, weekly the Sunday-to-Saturday week
// containing it, monthly the calendar month.
func PeriodRange(rangeType string, reference time.Time) (start, end time.Time, err error) {
	loc := reference.Location()
	day := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, loc)

	switch rangeType {
	case "daily":
		start = day
		end = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	case "weekly":
		start = day.AddDate(0, 0, -int(day.Weekday()))
		end = start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	case "monthly":
		start = time.Date(reference.Year(), reference.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	default:
		err = ErrInvalidRange
	}
	return start, end, err
}
