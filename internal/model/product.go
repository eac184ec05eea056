package model

type Product struct {
	BaseModel
	Name              string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Price             float64 `gorm:"not null;default:0" json:"price" validate:"gte=0"`
	Category          string  `gorm:"type:varchar(100)" json:"category"`
	Stock             int     `gorm:"not null;default:0;check:stock >= 0" json:"stock" validate:"gte=0"`
	LowStockThreshold int     `gorm:"not null;default:0" json:"low_stock_threshold" validate:"gte=0"`
}

// IsLowStock reports whether the product is at or below its alert threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// StockReport partitions the catalog by stock level for alerting.
type StockReport struct {
	OutOfStock []Product `json:"out_of_stock"`
	LowStock   []Product `json:"low_stock"`
}

// BuildStockReport derives the low/out-of-stock partition from the current
// product set. Pure function, recomputed on every read, never cached.
func BuildStockReport(products []Product) StockReport {
	report := StockReport{
		OutOfStock: []Product{},
		LowStock:   []Product{},
	}
	for _, p := range products {
		switch {
		case p.Stock == 0:
			report.OutOfStock = append(report.OutOfStock, p)
		case p.IsLowStock():
			report.LowStock = append(report.LowStock, p)
		}
	}
	return report
}
