package service

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/adiah-react/oxis-sales/internal/model"
	"github.com/adiah-react/oxis-sales/internal/repository"
	"github.com/adiah-react/oxis-sales/internal/ws"
	"github.com/adiah-react/oxis-sales/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TxRunner abstracts gorm's transaction entry point so the commit path can
// be exercised without a live database. *gorm.DB satisfies it.
type TxRunner interface {
	Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// Broadcaster pushes events to connected clients. *ws.Hub satisfies it.
type Broadcaster interface {
	BroadcastEvent(evt ws.Event)
}

// CartLine is one ephemeral cart entry. UnitPrice is the client snapshot
// taken at add-to-cart time and is not re-fetched at commit.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64   `json:"unit_price" validate:"gte=0"`
}

type CheckoutRequest struct {
	Items         []CartLine          `json:"items" validate:"dive"`
	PersonID      *uuid.UUID          `json:"person_id"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=cash card balance"`
}

// CheckoutConfig carries the business knobs resolved from the environment.
type CheckoutConfig struct {
	TaxRate float64
	// DefaultPersonID, when set, attributes otherwise-anonymous sales to the
	// configured walk-in customer. When nil, unattributed sales stay
	// anonymous.
	DefaultPersonID *uuid.UUID
}

type CheckoutService interface {
	Commit(req *CheckoutRequest, userID string) (*model.Sale, error)
	GetSalesHistory() ([]model.Sale, error)
	GetSaleByID(id uuid.UUID) (*model.Sale, error)
}

type checkoutService struct {
	productRepo repository.ProductRepository
	personRepo  repository.PersonRepository
	saleRepo    repository.SaleRepository
	db          TxRunner
	hub         Broadcaster
	cfg         CheckoutConfig
}

func NewCheckoutService(pRepo repository.ProductRepository, personRepo repository.PersonRepository, sRepo repository.SaleRepository, db TxRunner, hub Broadcaster, cfg CheckoutConfig) CheckoutService {
	return &checkoutService{
		productRepo: pRepo,
		personRepo:  personRepo,
		saleRepo:    sRepo,
		db:          db,
		hub:         hub,
		cfg:         cfg,
	}
}

// Commit converts a cart into one ledger entry plus a set of stock
// decrements, atomically: the sale is written only if every guarded
// decrement (and, for balance payments, the balance charge) held, and a
// failure on any line rolls back all of them.
func (s *checkoutService) Commit(req *CheckoutRequest, userID string) (*model.Sale, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, model.ErrEmptyCart
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'",
			model.ErrValidation, firstErr.FailedField, firstErr.Tag)
	}

	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentCash
	}
	personID := req.PersonID
	if personID == nil {
		personID = s.cfg.DefaultPersonID
	}
	if method == model.PaymentBalance && personID == nil {
		return nil, model.ErrBalanceRequiresPerson
	}

	// Merge duplicate lines so each product is reserved once, and walk the
	// products in a stable order so concurrent commits cannot deadlock on
	// row locks.
	needed := make(map[uuid.UUID]int, len(req.Items))
	order := make([]uuid.UUID, 0, len(req.Items))
	for _, line := range req.Items {
		if _, seen := needed[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		needed[line.ProductID] += line.Quantity
	}
	sort.Slice(order, func(i, j int) bool { return order[i].String() < order[j].String() })

	names := make(map[uuid.UUID]string, len(order))
	var sale *model.Sale

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Reservation + decrement in one guarded statement per product:
		// stock is reduced only while enough remains, so concurrent commits
		// against the same product can never oversell. Zero rows means the
		// guard failed; re-read to tell a missing product from a short one.
		for _, productID := range order {
			quantity := needed[productID]
			rows, err := s.productRepo.DecrementStock(tx, productID, quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if rows == 0 {
				product, ferr := s.productRepo.FindByID(productID)
				if ferr != nil {
					return model.ErrProductNotFound
				}
				return &model.InsufficientStockError{
					ProductID: productID,
					Name:      product.Name,
					Requested: quantity,
					Available: product.Stock,
				}
			}

			product, ferr := s.productRepo.FindByID(productID)
			if ferr != nil {
				return fmt.Errorf("read product: %w", ferr)
			}
			names[productID] = product.Name
		}

		items := make([]model.SaleItem, 0, len(req.Items))
		subtotal := 0.0
		for _, line := range req.Items {
			items = append(items, model.SaleItem{
				ProductID: line.ProductID,
				Name:      names[line.ProductID],
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
			})
			subtotal += line.UnitPrice * float64(line.Quantity)
		}
		subtotal = round2(subtotal)
		tax := round2(subtotal * s.cfg.TaxRate)
		total := round2(subtotal + tax)

		// Balance charges may overdraw into negative (prepaid tab), so the
		// increment is unconditional; only an unresolved person aborts.
		if method == model.PaymentBalance {
			rows, err := s.personRepo.AdjustBalance(tx, *personID, -total)
			if err != nil {
				return fmt.Errorf("charge balance: %w", err)
			}
			if rows == 0 {
				return model.ErrPersonNotFound
			}
		}

		sale = &model.Sale{
			PersonID:      personID,
			PaymentMethod: method,
			Subtotal:      subtotal,
			Tax:           tax,
			Total:         total,
			Items:         items,
			CreatedBy:     userID,
		}
		if err := s.saleRepo.Create(tx, sale); err != nil {
			return fmt.Errorf("append sale: %w", err)
		}
		return nil
	})

	if err != nil {
		var insufficient *model.InsufficientStockError
		switch {
		case errors.As(err, &insufficient),
			errors.Is(err, model.ErrProductNotFound),
			errors.Is(err, model.ErrPersonNotFound),
			errors.Is(err, model.ErrValidation):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %v", model.ErrCommitFailed, err)
		}
	}

	go s.announceSale(sale, order)

	return sale, nil
}

func (s *checkoutService) GetSalesHistory() ([]model.Sale, error) {
	return s.saleRepo.FindAll()
}

func (s *checkoutService) GetSaleByID(id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		return nil, model.ErrSaleNotFound
	}
	return sale, nil
}

// announceSale pushes the committed sale and any products it drove to or
// below their alert threshold. Best effort: a failed read here never touches
// the committed state.
func (s *checkoutService) announceSale(sale *model.Sale, productIDs []uuid.UUID) {
	s.hub.BroadcastEvent(ws.Event{
		Type:    "sale_completed",
		Message: fmt.Sprintf("Sale committed: %d item(s), total %.2f", len(sale.Items), sale.Total),
		Data: map[string]interface{}{
			"sale_id": sale.ID,
			"total":   sale.Total,
			"items":   len(sale.Items),
		},
	})

	for _, productID := range productIDs {
		product, err := s.productRepo.FindByID(productID)
		if err != nil {
			continue
		}
		if product.IsLowStock() {
			s.hub.BroadcastEvent(ws.Event{
				Type:    "low_stock_alert",
				Message: fmt.Sprintf("'%s' is low on stock (%d left)", product.Name, product.Stock),
				Data: map[string]interface{}{
					"product_id": product.ID,
					"name":       product.Name,
					"stock":      product.Stock,
					"threshold":  product.LowStockThreshold,
				},
			})
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
