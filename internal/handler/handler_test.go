package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avdev/sales-order-api/internal/domain/customer"
	"github.com/avdev/sales-order-api/internal/domain/product"
	"github.com/avdev/sales-order-api/internal/domain/sale"
	"github.com/avdev/sales-order-api/internal/notify"
)

// --- Mock implementations ---

type mockCustomerRepo struct {
	customers []customer.Customer
	err       error
}

func (m *mockCustomerRepo) Create(_ context.Context, c *customer.Customer) error {
	if m.err != nil {
		return m.err
	}
	m.customers = append(m.customers, *c)
	return nil
}

func (m *mockCustomerRepo) GetByID(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.customers {
		if m.customers[i].ID == id {
			return &m.customers[i], nil
		}
	}
	return nil, customer.ErrNotFound
}

func (m *mockCustomerRepo) GetByName(_ context.Context, name string) (*customer.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.customers {
		if m.customers[i].Name == name {
			return &m.customers[i], nil
		}
	}
	return nil, customer.ErrNotFound
}

func (m *mockCustomerRepo) GetByPartialName(_ context.Context, name string) (*customer.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.customers {
		if strings.Contains(strings.ToLower(m.customers[i].Name), strings.ToLower(name)) {
			return &m.customers[i], nil
		}
	}
	return nil, customer.ErrNotFound
}

func (m *mockCustomerRepo) GetByEmail(_ context.Context, email string) (*customer.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.customers {
		if m.customers[i].Email == email {
			return &m.customers[i], nil
		}
	}
	return nil, customer.ErrNotFound
}

func (m *mockCustomerRepo) List(_ context.Context) ([]customer.Customer, error) {
	return m.customers, m.err
}

func (m *mockCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.customers {
		if m.customers[i].ID == id {
			m.customers = append(m.customers[:i], m.customers[i+1:]...)
			return nil
		}
	}
	return customer.ErrNotFound
}

type mockProductRepo struct {
	products []product.Product
	err      error
}

func (m *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	if m.err != nil {
		return m.err
	}
	m.products = append(m.products, *p)
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) GetByCode(_ context.Context, code string) (*product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.products {
		if m.products[i].Code == code {
			return &m.products[i], nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) GetByCodes(_ context.Context, codes []string) ([]product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		want[c] = struct{}{}
	}
	var out []product.Product
	for _, p := range m.products {
		if _, ok := want[p.Code]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) SearchByDescription(_ context.Context, term string) ([]product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []product.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Description), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return m.products, m.err
}

func (m *mockProductRepo) Delete(_ context.Context, code string) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.products {
		if m.products[i].Code == code {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return product.ErrNotFound
}

type mockSaleRepo struct {
	sales     map[uuid.UUID]*sale.Sale
	createErr error
}

func newMockSaleRepo() *mockSaleRepo {
	return &mockSaleRepo{sales: make(map[uuid.UUID]*sale.Sale)}
}

func (m *mockSaleRepo) Create(_ context.Context, s *sale.Sale) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.sales[s.ID] = s
	return nil
}

func (m *mockSaleRepo) GetByID(_ context.Context, id uuid.UUID) (*sale.Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return nil, sale.ErrNotFound
	}
	return s, nil
}

func (m *mockSaleRepo) List(_ context.Context) ([]sale.Sale, error) {
	out := make([]sale.Sale, 0, len(m.sales))
	for _, s := range m.sales {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSaleRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.sales[id]; !ok {
		return sale.ErrNotFound
	}
	delete(m.sales, id)
	return nil
}

func (m *mockSaleRepo) SetCancelled(_ context.Context, id uuid.UUID, cancelled bool) error {
	s, ok := m.sales[id]
	if !ok {
		return sale.ErrNotFound
	}
	s.Cancelled = cancelled
	return nil
}

type mockBus struct {
	events []notify.SaleCreated
}

func (m *mockBus) SaleCreated(_ context.Context, ev notify.SaleCreated) {
	m.events = append(m.events, ev)
}

// --- Test environment ---

type testEnv struct {
	router    *gin.Engine
	customers *mockCustomerRepo
	products  *mockProductRepo
	sales     *mockSaleRepo
	bus       *mockBus
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		customers: &mockCustomerRepo{},
		products:  &mockProductRepo{},
		sales:     newMockSaleRepo(),
		bus:       &mockBus{},
	}

	h := NewHandler(env.customers, env.products, env.sales, sale.NewService(env.sales), env.bus)
	env.router = gin.New()
	h.RegisterRoutes(env.router.Group("/api/v1"))
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}
