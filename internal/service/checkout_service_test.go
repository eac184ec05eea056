package service_test

import (
	"testing"

	"github.com/adiah-react/oxis-sales/internal/model"
	"github.com/adiah-react/oxis-sales/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newCheckoutService(store *mockStore, cfg service.CheckoutConfig) service.CheckoutService {
	return service.NewCheckoutService(store.products, store.persons, store.sales, store, noopHub{}, cfg)
}

func seedProduct(store *mockStore, name string, price float64, stock, threshold int) *model.Product {
	p := &model.Product{
		Name:              name,
		Price:             price,
		Stock:             stock,
		LowStockThreshold: threshold,
	}
	store.products.put(p)
	return p
}

func TestCommitHappyPath(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})

	coffee := seedProduct(store, "Coffee", 3.50, 5, 1)

	sale, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: coffee.ID, Quantity: 3, UnitPrice: 3.50},
		},
	}, "cashier-1")
	require.NoError(t, err)
	require.NotNil(t, sale)

	require.InDelta(t, 10.50, sale.Subtotal, 0.001)
	require.InDelta(t, 0.0, sale.Tax, 0.001)
	require.InDelta(t, 10.50, sale.Total, 0.001)
	require.Equal(t, model.PaymentCash, sale.PaymentMethod)
	require.Nil(t, sale.PersonID)
	require.Equal(t, "cashier-1", sale.CreatedBy)

	require.Len(t, sale.Items, 1)
	require.Equal(t, "Coffee", sale.Items[0].Name)
	require.Equal(t, 3, sale.Items[0].Quantity)

	after, err := store.products.FindByID(coffee.ID)
	require.NoError(t, err)
	require.Equal(t, 2, after.Stock)

	history, err := svc.GetSalesHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestCommitInsufficientStock(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})

	coffee := seedProduct(store, "Coffee", 3.50, 5, 1)

	_, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: coffee.ID, Quantity: 10, UnitPrice: 3.50},
		},
	}, "cashier-1")

	var insufficient *model.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, coffee.ID, insufficient.ProductID)
	require.Equal(t, "Coffee", insufficient.Name)
	require.Equal(t, 10, insufficient.Requested)
	require.Equal(t, 5, insufficient.Available)

	after, _ := store.products.FindByID(coffee.ID)
	require.Equal(t, 5, after.Stock, "failed commit must not touch stock")

	history, _ := svc.GetSalesHistory()
	require.Empty(t, history, "failed commit must not append a sale")
}

func TestCommitRollsBackEarlierDecrements(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})

	// Fixed IDs pin the walk order: first succeeds, second trips the guard.
	first := &model.Product{Name: "Tea", Price: 2.00, Stock: 10}
	first.ID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	store.products.put(first)
	second := &model.Product{Name: "Scone", Price: 4.00, Stock: 1}
	second.ID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	store.products.put(second)

	_, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: first.ID, Quantity: 2, UnitPrice: 2.00},
			{ProductID: second.ID, Quantity: 3, UnitPrice: 4.00},
		},
	}, "cashier-1")

	var insufficient *model.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, second.ID, insufficient.ProductID)

	afterFirst, _ := store.products.FindByID(first.ID)
	require.Equal(t, 10, afterFirst.Stock, "earlier decrement must be rolled back")
	afterSecond, _ := store.products.FindByID(second.ID)
	require.Equal(t, 1, afterSecond.Stock)

	history, _ := svc.GetSalesHistory()
	require.Empty(t, history)
}

func TestCommitRollsBackWhenSaleAppendFails(t *testing.T) {
	store := newMockStore()
	store.sales.createErr = errStoreDown
	svc := newCheckoutService(store, service.CheckoutConfig{})

	coffee := seedProduct(store, "Coffee", 3.50, 5, 1)

	_, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: coffee.ID, Quantity: 2, UnitPrice: 3.50},
		},
	}, "cashier-1")
	require.ErrorIs(t, err, model.ErrCommitFailed)

	after, _ := store.products.FindByID(coffee.ID)
	require.Equal(t, 5, after.Stock, "stock restored when the ledger append fails")
}

func TestCommitEmptyCart(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})

	_, err := svc.Commit(&service.CheckoutRequest{}, "cashier-1")
	require.ErrorIs(t, err, model.ErrEmptyCart)

	_, err = svc.Commit(nil, "cashier-1")
	require.ErrorIs(t, err, model.ErrEmptyCart)
}

func TestCommitRejectsInvalidLines(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})
	coffee := seedProduct(store, "Coffee", 3.50, 5, 1)

	t.Run("zero quantity", func(t *testing.T) {
		_, err := svc.Commit(&service.CheckoutRequest{
			Items: []service.CartLine{
				{ProductID: coffee.ID, Quantity: 0, UnitPrice: 3.50},
			},
		}, "cashier-1")
		require.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := svc.Commit(&service.CheckoutRequest{
			Items: []service.CartLine{
				{ProductID: coffee.ID, Quantity: -2, UnitPrice: 3.50},
			},
		}, "cashier-1")
		require.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("missing product id", func(t *testing.T) {
		_, err := svc.Commit(&service.CheckoutRequest{
			Items: []service.CartLine{
				{Quantity: 1, UnitPrice: 3.50},
			},
		}, "cashier-1")
		require.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestCommitUnknownProduct(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})

	_, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: 1.00},
		},
	}, "cashier-1")
	require.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestCommitMergesDuplicateLines(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})

	coffee := seedProduct(store, "Coffee", 3.50, 5, 0)

	// 3+3 across two lines exceeds the stock of 5 only when merged.
	_, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: coffee.ID, Quantity: 3, UnitPrice: 3.50},
			{ProductID: coffee.ID, Quantity: 3, UnitPrice: 3.50},
		},
	}, "cashier-1")

	var insufficient *model.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 6, insufficient.Requested)

	after, _ := store.products.FindByID(coffee.ID)
	require.Equal(t, 5, after.Stock)
}

func TestCommitAppliesTaxRate(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{TaxRate: 0.08})

	coffee := seedProduct(store, "Coffee", 2.50, 10, 0)

	sale, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: coffee.ID, Quantity: 2, UnitPrice: 2.50},
		},
	}, "cashier-1")
	require.NoError(t, err)

	require.InDelta(t, 5.00, sale.Subtotal, 0.001)
	require.InDelta(t, 0.40, sale.Tax, 0.001)
	require.InDelta(t, sale.Subtotal+sale.Tax, sale.Total, 0.001)
}

func TestCommitBalancePayment(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})

	coffee := seedProduct(store, "Coffee", 3.00, 10, 0)
	person := &model.Person{Name: "Ada", Type: model.PersonStudent, Balance: 5.00}
	store.persons.put(person)

	sale, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: coffee.ID, Quantity: 3, UnitPrice: 3.00},
		},
		PersonID:      &person.ID,
		PaymentMethod: model.PaymentBalance,
	}, "cashier-1")
	require.NoError(t, err)
	require.Equal(t, model.PaymentBalance, sale.PaymentMethod)
	require.NotNil(t, sale.PersonID)
	require.Equal(t, person.ID, *sale.PersonID)

	// 5.00 - 9.00: the tab is allowed to go negative.
	after, _ := store.persons.FindByID(person.ID)
	require.InDelta(t, -4.00, after.Balance, 0.001)
}

func TestCommitBalanceWithoutPerson(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})
	coffee := seedProduct(store, "Coffee", 3.00, 10, 0)

	_, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: coffee.ID, Quantity: 1, UnitPrice: 3.00},
		},
		PaymentMethod: model.PaymentBalance,
	}, "cashier-1")
	require.ErrorIs(t, err, model.ErrBalanceRequiresPerson)
}

func TestCommitBalanceUnknownPersonRollsBack(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})
	coffee := seedProduct(store, "Coffee", 3.00, 10, 0)

	ghost := uuid.New()
	_, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: coffee.ID, Quantity: 2, UnitPrice: 3.00},
		},
		PersonID:      &ghost,
		PaymentMethod: model.PaymentBalance,
	}, "cashier-1")
	require.ErrorIs(t, err, model.ErrPersonNotFound)

	after, _ := store.products.FindByID(coffee.ID)
	require.Equal(t, 10, after.Stock, "stock restored when the balance charge fails")
}

func TestCommitDefaultPersonAttribution(t *testing.T) {
	store := newMockStore()
	walkIn := &model.Person{Name: "Walk-in", Type: model.PersonOther}
	store.persons.put(walkIn)
	svc := newCheckoutService(store, service.CheckoutConfig{DefaultPersonID: &walkIn.ID})

	coffee := seedProduct(store, "Coffee", 3.00, 10, 0)

	sale, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: coffee.ID, Quantity: 1, UnitPrice: 3.00},
		},
	}, "cashier-1")
	require.NoError(t, err)
	require.NotNil(t, sale.PersonID)
	require.Equal(t, walkIn.ID, *sale.PersonID)
}

func TestCommitSequentialNeverOversells(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})

	coffee := seedProduct(store, "Coffee", 3.00, 5, 0)

	succeeded := 0
	for i := 0; i < 4; i++ {
		_, err := svc.Commit(&service.CheckoutRequest{
			Items: []service.CartLine{
				{ProductID: coffee.ID, Quantity: 2, UnitPrice: 3.00},
			},
		}, "cashier-1")
		if err == nil {
			succeeded++
		} else {
			var insufficient *model.InsufficientStockError
			require.ErrorAs(t, err, &insufficient)
		}
	}

	require.Equal(t, 2, succeeded)
	after, _ := store.products.FindByID(coffee.ID)
	require.Equal(t, 1, after.Stock)
}

func TestGetSaleByID(t *testing.T) {
	store := newMockStore()
	svc := newCheckoutService(store, service.CheckoutConfig{})
	coffee := seedProduct(store, "Coffee", 3.00, 10, 0)

	sale, err := svc.Commit(&service.CheckoutRequest{
		Items: []service.CartLine{
			{ProductID: coffee.ID, Quantity: 1, UnitPrice: 3.00},
		},
	}, "cashier-1")
	require.NoError(t, err)

	found, err := svc.GetSaleByID(sale.ID)
	require.NoError(t, err)
	require.Equal(t, sale.ID, found.ID)

	_, err = svc.GetSaleByID(uuid.New())
	require.ErrorIs(t, err, model.ErrSaleNotFound)
}
