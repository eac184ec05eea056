package service_test

import (
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/adiah-react/oxis-sales/internal/model"
	"github.com/adiah-react/oxis-sales/internal/repository"
	"github.com/adiah-react/oxis-sales/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// mockStore bundles in-memory repositories with a transaction runner that
// emulates rollback by snapshot/restore, so commit semantics can be asserted
// without a database.
type mockStore struct {
	products *mockProductRepo
	persons  *mockPersonRepo
	sales    *mockSaleRepo
	users    *mockUserRepo
}

func newMockStore() *mockStore {
	return &mockStore{
		products: &mockProductRepo{products: map[uuid.UUID]*model.Product{}},
		persons:  &mockPersonRepo{persons: map[uuid.UUID]*model.Person{}},
		sales:    &mockSaleRepo{},
		users:    &mockUserRepo{users: map[uuid.UUID]*model.User{}},
	}
}

func (m *mockStore) Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	productSnap := m.products.snapshot()
	personSnap := m.persons.snapshot()
	saleSnap := m.sales.snapshot()
	if err := fn(nil); err != nil {
		m.products.restore(productSnap)
		m.persons.restore(personSnap)
		m.sales.restore(saleSnap)
		return err
	}
	return nil
}

type noopHub struct{}

func (noopHub) BroadcastEvent(ws.Event) {}

// ---- products ----

type mockProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product

	decrementErr error // forced failure for every decrement when set
}

func (m *mockProductRepo) put(p *model.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.products[p.ID] = &cp
}

func (m *mockProductRepo) snapshot() map[uuid.UUID]model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[uuid.UUID]model.Product, len(m.products))
	for id, p := range m.products {
		snap[id] = *p
	}
	return snap
}

func (m *mockProductRepo) restore(snap map[uuid.UUID]model.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = make(map[uuid.UUID]*model.Product, len(snap))
	for id, p := range snap {
		cp := p
		m.products[id] = &cp
	}
}

func (m *mockProductRepo) Create(product *model.Product) error {
	m.put(product)
	return nil
}

func (m *mockProductRepo) FindAll() ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) FindByName(name string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProductRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return m.FindByID(id)
}

func (m *mockProductRepo) Update(tx *gorm.DB, product *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *mockProductRepo) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) DecrementStock(tx *gorm.DB, id uuid.UUID, quantity int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.decrementErr != nil {
		return 0, m.decrementErr
	}
	p, ok := m.products[id]
	if !ok || p.Stock < quantity {
		return 0, nil
	}
	p.Stock -= quantity
	return 1, nil
}

func (m *mockProductRepo) IncrementStock(tx *gorm.DB, id uuid.UUID, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += amount
	return nil
}

func (m *mockProductRepo) GetInventoryStats() (*repository.InventoryStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &repository.InventoryStats{}
	for _, p := range m.products {
		stats.TotalProducts++
		if p.IsLowStock() {
			stats.LowStockCount++
		}
		stats.TotalValuation += float64(p.Stock) * p.Price
	}
	return stats, nil
}

// ---- persons ----

type mockPersonRepo struct {
	mu      sync.Mutex
	persons map[uuid.UUID]*model.Person
}

func (m *mockPersonRepo) put(p *model.Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.persons[p.ID] = &cp
}

func (m *mockPersonRepo) snapshot() map[uuid.UUID]model.Person {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[uuid.UUID]model.Person, len(m.persons))
	for id, p := range m.persons {
		snap[id] = *p
	}
	return snap
}

func (m *mockPersonRepo) restore(snap map[uuid.UUID]model.Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persons = make(map[uuid.UUID]*model.Person, len(snap))
	for id, p := range snap {
		cp := p
		m.persons[id] = &cp
	}
}

func (m *mockPersonRepo) Create(person *model.Person) error {
	m.put(person)
	return nil
}

func (m *mockPersonRepo) FindAll() ([]model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Person, 0, len(m.persons))
	for _, p := range m.persons {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockPersonRepo) FindByID(id uuid.UUID) (*model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.persons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPersonRepo) Update(person *model.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.persons[person.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *person
	m.persons[person.ID] = &cp
	return nil
}

func (m *mockPersonRepo) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.persons[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.persons, id)
	return nil
}

func (m *mockPersonRepo) AdjustBalance(tx *gorm.DB, id uuid.UUID, delta float64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.persons[id]
	if !ok {
		return 0, nil
	}
	p.Balance += delta
	return 1, nil
}

// ---- sales ----

type mockSaleRepo struct {
	mu        sync.Mutex
	sales     []*model.Sale
	createErr error // forced append failure when set
}

func (m *mockSaleRepo) snapshot() []*model.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make([]*model.Sale, len(m.sales))
	copy(snap, m.sales)
	return snap
}

func (m *mockSaleRepo) restore(snap []*model.Sale) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales = snap
}

func (m *mockSaleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if sale.Date.IsZero() {
		sale.Date = time.Now()
	}
	m.sales = append(m.sales, sale)
	return nil
}

func (m *mockSaleRepo) FindAll() ([]model.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Sale, 0, len(m.sales))
	for _, s := range m.sales {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *mockSaleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSaleRepo) GetSalesStats() (*repository.SalesStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &repository.SalesStats{}
	for _, s := range m.sales {
		stats.TotalRevenue += s.Total
		stats.SaleCount++
		for _, item := range s.Items {
			stats.ItemsSold += int64(item.Quantity)
		}
	}
	return stats, nil
}

func (m *mockSaleRepo) GetItemSales(startDate, endDate time.Time) ([]repository.ItemSales, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byProduct := map[uuid.UUID]*repository.ItemSales{}
	for _, s := range m.sales {
		if s.Date.Before(startDate) || s.Date.After(endDate) {
			continue
		}
		for _, item := range s.Items {
			agg, ok := byProduct[item.ProductID]
			if !ok {
				agg = &repository.ItemSales{ProductID: item.ProductID, Name: item.Name}
				byProduct[item.ProductID] = agg
			}
			agg.Quantity += int64(item.Quantity)
			agg.Revenue += item.LineTotal()
		}
	}
	out := make([]repository.ItemSales, 0, len(byProduct))
	for _, agg := range byProduct {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out, nil
}

func (m *mockSaleRepo) GetTopProducts(limit int) ([]repository.ItemSales, error) {
	all, err := m.GetItemSales(time.Time{}, time.Now().AddDate(100, 0, 0))
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Quantity > all[j].Quantity })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ---- users ----

type mockUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func (m *mockUserRepo) put(u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	m.users[u.ID] = &cp
}

func (m *mockUserRepo) FindByEmail(email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) Create(user *model.User) error {
	m.put(user)
	return nil
}

func (m *mockUserRepo) Update(user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) FindAll() ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (m *mockUserRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.TokenVersion = version
	return nil
}

var errStoreDown = errors.New("store unavailable")
