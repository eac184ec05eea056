package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentBalance PaymentMethod = "balance"
)

// Sale is one committed checkout. The ledger is append-only: sales are
// never updated or deleted, so there is no soft delete and no audit churn.
type Sale struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	Date          time.Time     `gorm:"not null;index" json:"date"`
	Subtotal      float64       `gorm:"not null" json:"subtotal"`
	Tax           float64       `gorm:"not null" json:"tax"`
	Total         float64       `gorm:"not null" json:"total"`
	PersonID      *uuid.UUID    `gorm:"type:uuid;index" json:"person_id,omitempty"`
	Person        *Person       `gorm:"foreignKey:PersonID" json:"person,omitempty" validate:"-"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	Items         []SaleItem    `gorm:"foreignKey:SaleID" json:"items"`
	CreatedAt     time.Time     `json:"created_at"`
	CreatedBy     string        `json:"created_by"`
}

// BeforeCreate assigns the id and the server-side commit timestamp.
func (s *Sale) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Date.IsZero() {
		s.Date = time.Now()
	}
	return
}

// SaleItem is a denormalized line snapshot: name and unit price are copied
// from the product at commit time so receipts stay stable if the product
// record later changes or disappears.
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// LineTotal is the snapshot price times quantity.
func (i SaleItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}
