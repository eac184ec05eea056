package service

import (
	"errors"
	"fmt"

	"github.com/adiah-react/oxis-sales/internal/model"
	"github.com/adiah-react/oxis-sales/internal/repository"
	"github.com/adiah-react/oxis-sales/internal/ws"
	"github.com/adiah-react/oxis-sales/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UpdateProductRequest struct {
	Name              string  `json:"name" validate:"required"`
	Price             float64 `json:"price" validate:"gte=0"`
	Category          string  `json:"category"`
	Stock             int     `json:"stock" validate:"gte=0"`
	LowStockThreshold int     `json:"low_stock_threshold" validate:"gte=0"`
}

type InventoryService interface {
	CreateProduct(req *model.Product, userID string) error
	UpdateProduct(id uuid.UUID, req *UpdateProductRequest, userID string) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
	Restock(id uuid.UUID, amount int, userID string) (*model.Product, error)
	GetAllProducts() ([]model.Product, error)
	GetStockReport() (*model.StockReport, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	db          TxRunner
	hub         Broadcaster
}

func NewInventoryService(pRepo repository.ProductRepository, db TxRunner, hub Broadcaster) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		db:          db,
		hub:         hub,
	}
}

func (s *inventoryService) CreateProduct(req *model.Product, userID string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("%w: field '%s' failed on tag '%s'",
			model.ErrValidation, firstErr.FailedField, firstErr.Tag)
	}

	existing, _ := s.productRepo.FindByName(req.Name)
	if existing != nil && existing.ID != uuid.Nil {
		return model.ErrDuplicateProductName
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID

	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	go s.hub.BroadcastEvent(ws.Event{
		Type:    "stock_update",
		Message: fmt.Sprintf("Product '%s' created", req.Name),
		Data: map[string]interface{}{
			"action":     "product_created",
			"product_id": req.ID,
			"name":       req.Name,
			"stock":      req.Stock,
			"price":      req.Price,
		},
	})

	return nil
}

func (s *inventoryService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, userID string) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'",
			model.ErrValidation, firstErr.FailedField, firstErr.Tag)
	}

	var updated *model.Product
	var oldStock int

	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.FindForUpdate(tx, id)
		if err != nil {
			return model.ErrProductNotFound
		}

		oldStock = existing.Stock

		existing.Name = req.Name
		existing.Price = req.Price
		existing.Category = req.Category
		existing.Stock = req.Stock
		existing.LowStockThreshold = req.LowStockThreshold
		existing.UpdatedBy = userID

		if err := s.productRepo.Update(tx, existing); err != nil {
			return err
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.hub.BroadcastEvent(ws.Event{
		Type:    "stock_update",
		Message: fmt.Sprintf("Product '%s' updated", updated.Name),
		Data: map[string]interface{}{
			"action":     "product_updated",
			"product_id": updated.ID,
			"name":       updated.Name,
			"old_stock":  oldStock,
			"new_stock":  updated.Stock,
			"price":      updated.Price,
		},
	})

	return updated, nil
}

func (s *inventoryService) DeleteProduct(id uuid.UUID) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrProductNotFound
		}
		return err
	}
	return nil
}

// Restock applies an unconditional atomic increment and returns the
// refreshed record.
func (s *inventoryService) Restock(id uuid.UUID, amount int, userID string) (*model.Product, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: restock amount must be positive", model.ErrValidation)
	}

	if err := s.productRepo.IncrementStock(nil, id, amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProductNotFound
		}
		return nil, err
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, model.ErrProductNotFound
	}

	go s.hub.BroadcastEvent(ws.Event{
		Type:    "stock_update",
		Message: fmt.Sprintf("Restocked %d units of '%s'", amount, product.Name),
		Data: map[string]interface{}{
			"action":     "product_restocked",
			"product_id": product.ID,
			"name":       product.Name,
			"amount":     amount,
			"new_stock":  product.Stock,
		},
	})

	return product, nil
}

func (s *inventoryService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *inventoryService) GetStockReport() (*model.StockReport, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	report := model.BuildStockReport(products)
	return &report, nil
}
