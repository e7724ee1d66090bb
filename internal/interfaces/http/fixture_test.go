package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/GiancarloGO/master-color-api/internal/application/auth"
	"github.com/GiancarloGO/master-color-api/internal/application/catalog"
	"github.com/GiancarloGO/master-color-api/internal/application/inventory"
	"github.com/GiancarloGO/master-color-api/internal/application/orders"
	"github.com/GiancarloGO/master-color-api/internal/application/payment"
	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
	"github.com/GiancarloGO/master-color-api/internal/infrastructure/kv"
	apphttp "github.com/GiancarloGO/master-color-api/internal/interfaces/http"
	"github.com/GiancarloGO/master-color-api/pkg/config"
	"github.com/GiancarloGO/master-color-api/pkg/jwt"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Estado en memoria compartido por los repositorios fake
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "master-color-test"
	testExpMin    = 60
)

type memState struct {
	clients   map[int64]*entity.Client
	addresses map[int64]*entity.Address
	users     map[int64]*entity.User
	products  map[int64]*entity.Product
	stocks    map[int64]*entity.Stock
	orders    map[int64]*entity.Order
	payments  map[int64]*entity.Payment // por order_id
	movements map[int64]*entity.StockMovement
	nextID    int64
}

func newMemState() *memState {
	return &memState{
		clients:   make(map[int64]*entity.Client),
		addresses: make(map[int64]*entity.Address),
		users:     make(map[int64]*entity.User),
		products:  make(map[int64]*entity.Product),
		stocks:    make(map[int64]*entity.Stock),
		orders:    make(map[int64]*entity.Order),
		payments:  make(map[int64]*entity.Payment),
		movements: make(map[int64]*entity.StockMovement),
		nextID:    100,
	}
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

// addProduct registra producto + stock con el mismo ID.
func (s *memState) addProduct(id int64, name string, qty int64, price string) {
	s.products[id] = &entity.Product{ID: id, Name: name, SKU: name, Active: true}
	s.stocks[id] = &entity.Stock{
		ID: id, ProductID: id, Quantity: qty, MinStock: 1, MaxStock: 1000,
		SalePrice: decimal.RequireFromString(price),
	}
}

func (s *memState) addClient(id int64, name, email string) {
	s.clients[id] = &entity.Client{ID: id, Name: name, Email: email}
	s.addresses[id] = &entity.Address{ID: id, ClientID: id, Line: "Av. Siempre Viva 123"}
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios fake
// ──────────────────────────────────────────────────────────────────────────────

type memClientRepo struct{ s *memState }

func (r memClientRepo) GetByID(id int64) (*entity.Client, error) {
	if c, ok := r.s.clients[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (r memClientRepo) GetByEmail(email string) (*entity.Client, error) {
	for _, c := range r.s.clients {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memClientRepo) GetAddress(clientID, addressID int64) (*entity.Address, error) {
	if a, ok := r.s.addresses[addressID]; ok && a.ClientID == clientID {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

type memUserRepo struct{ s *memState }

func (r memUserRepo) GetByID(id int64) (*entity.User, error) {
	if u, ok := r.s.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r memUserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memProductRepo struct{ s *memState }

func (r memProductRepo) Create(p *entity.Product) error {
	p.ID = r.s.id()
	r.s.products[p.ID] = p
	return nil
}

func (r memProductRepo) GetByID(id int64) (*entity.Product, error) {
	if p, ok := r.s.products[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (r memProductRepo) List(limit, offset int) ([]entity.Product, error) {
	out := make([]entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r memProductRepo) Update(p *entity.Product) error {
	r.s.products[p.ID] = p
	return nil
}

type memStockRepo struct{ s *memState }

func (r memStockRepo) GetByID(id int64) (*entity.Stock, error) {
	if st, ok := r.s.stocks[id]; ok {
		return st, nil
	}
	return nil, domain.ErrNotFound
}

func (r memStockRepo) GetByProductID(productID int64) (*entity.Stock, error) {
	for _, st := range r.s.stocks {
		if st.ProductID == productID {
			return st, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memStockRepo) List(limit, offset int) ([]entity.Stock, error) {
	out := make([]entity.Stock, 0, len(r.s.stocks))
	for _, st := range r.s.stocks {
		out = append(out, *st)
	}
	return out, nil
}

func (r memStockRepo) GetForUpdate(id int64) (*entity.Stock, error) { return r.GetByID(id) }

func (r memStockRepo) GetForUpdateByProduct(productID int64) (*entity.Stock, error) {
	return r.GetByProductID(productID)
}

func (r memStockRepo) UpdateQuantity(id int64, quantity int64) error {
	st, ok := r.s.stocks[id]
	if !ok {
		return domain.ErrNotFound
	}
	st.Quantity = quantity
	return nil
}

type memOrderRepo struct{ s *memState }

func (r memOrderRepo) Create(o *entity.Order) error {
	o.ID = r.s.id()
	o.CreatedAt = time.Now()
	r.s.orders[o.ID] = o
	return nil
}

func (r memOrderRepo) GetByID(id int64) (*entity.Order, error) {
	if o, ok := r.s.orders[id]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (r memOrderRepo) GetWithDetails(id int64) (*entity.Order, error) { return r.GetByID(id) }

func (r memOrderRepo) GetByClient(clientID, orderID int64) (*entity.Order, error) {
	o, err := r.GetByID(orderID)
	if err != nil || o.ClientID != clientID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (r memOrderRepo) List(limit, offset int) ([]entity.Order, error) {
	out := make([]entity.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r memOrderRepo) ListByClient(clientID int64, limit, offset int) ([]entity.Order, error) {
	out := make([]entity.Order, 0)
	for _, o := range r.s.orders {
		if o.ClientID == clientID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r memOrderRepo) UpdateStatus(id int64, status string) error {
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

func (r memOrderRepo) CreateDetail(d *entity.OrderDetail) error {
	o, ok := r.s.orders[d.OrderID]
	if !ok {
		return domain.ErrNotFound
	}
	d.ID = r.s.id()
	o.Details = append(o.Details, *d)
	return nil
}

type memPaymentRepo struct{ s *memState }

func (r memPaymentRepo) Create(p *entity.Payment) error {
	if _, exists := r.s.payments[p.OrderID]; exists {
		return domain.ErrDuplicate
	}
	p.ID = r.s.id()
	r.s.payments[p.OrderID] = p
	return nil
}

func (r memPaymentRepo) GetByID(id int64) (*entity.Payment, error) {
	for _, p := range r.s.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memPaymentRepo) GetByOrderAndMethod(orderID int64, method string) (*entity.Payment, error) {
	if p, ok := r.s.payments[orderID]; ok && p.PaymentMethod == method {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (r memPaymentRepo) Update(p *entity.Payment) error {
	r.s.payments[p.OrderID] = p
	return nil
}

type memMovementRepo struct{ s *memState }

func (r memMovementRepo) Create(m *entity.StockMovement) error {
	m.ID = r.s.id()
	m.CreatedAt = time.Now()
	r.s.movements[m.ID] = m
	return nil
}

func (r memMovementRepo) GetByID(id int64) (*entity.StockMovement, error) {
	if m, ok := r.s.movements[id]; ok {
		return m, nil
	}
	return nil, domain.ErrNotFound
}

func (r memMovementRepo) GetWithDetails(id int64) (*entity.StockMovement, error) {
	return r.GetByID(id)
}

func (r memMovementRepo) List(limit, offset int) ([]entity.StockMovement, error) {
	out := make([]entity.StockMovement, 0, len(r.s.movements))
	for _, m := range r.s.movements {
		out = append(out, *m)
	}
	return out, nil
}

func (r memMovementRepo) Update(m *entity.StockMovement) error {
	r.s.movements[m.ID] = m
	return nil
}

func (r memMovementRepo) MarkCanceled(id int64, at time.Time) error {
	m, ok := r.s.movements[id]
	if !ok || m.CanceledAt != nil {
		return domain.ErrNotFound
	}
	m.CanceledAt = &at
	return nil
}

func (r memMovementRepo) Delete(id int64) error {
	delete(r.s.movements, id)
	return nil
}

func (r memMovementRepo) CreateDetail(d *entity.MovementDetail) error {
	m, ok := r.s.movements[d.StockMovementID]
	if !ok {
		return domain.ErrNotFound
	}
	d.ID = r.s.id()
	m.Details = append(m.Details, *d)
	return nil
}

func (r memMovementRepo) DeleteDetails(movementID int64) error {
	if m, ok := r.s.movements[movementID]; ok {
		m.Details = nil
	}
	return nil
}

// memTxRunner satisface los tres puertos de transacción sobre el mismo estado.
type memTxRunner struct{ s *memState }

func (t memTxRunner) Run(ctx context.Context, fn func(
	repository.StockMovementRepository,
	repository.StockRepository,
	repository.ProductRepository,
) error) error {
	return fn(memMovementRepo{t.s}, memStockRepo{t.s}, memProductRepo{t.s})
}

func (t memTxRunner) RunOrder(ctx context.Context, fn func(
	repository.OrderRepository,
	repository.StockRepository,
	repository.ProductRepository,
) error) error {
	return fn(memOrderRepo{t.s}, memStockRepo{t.s}, memProductRepo{t.s})
}

func (t memTxRunner) RunPayment(ctx context.Context, fn func(
	repository.PaymentRepository,
	repository.OrderRepository,
	repository.StockMovementRepository,
	repository.StockRepository,
	repository.ProductRepository,
) error) error {
	return fn(memPaymentRepo{t.s}, memOrderRepo{t.s}, memMovementRepo{t.s}, memStockRepo{t.s}, memProductRepo{t.s})
}

// stubGateway responde pagos predefinidos y cuenta las llamadas.
type stubGateway struct {
	payments   map[string]*payment.GatewayPayment
	fetchCalls int
}

func (g *stubGateway) CreatePreference(ctx context.Context, req payment.PreferenceRequest) (*payment.Preference, error) {
	return &payment.Preference{ID: "pref-test", InitPoint: "https://mp/init", SandboxInitPoint: "https://mp/sandbox"}, nil
}

func (g *stubGateway) FetchPayment(ctx context.Context, paymentID string) (*payment.GatewayPayment, error) {
	g.fetchCalls++
	if p, ok := g.payments[paymentID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (g *stubGateway) SearchByReference(ctx context.Context, ref string) ([]payment.GatewayPayment, error) {
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación de prueba
// ──────────────────────────────────────────────────────────────────────────────

type testApp struct {
	app   *fiber.App
	state *memState
	gw    *stubGateway
	store kv.Store
}

// buildTestApp levanta la app completa con repos en memoria. env controla los
// filtros del webhook ("development" los relaja, "production" los exige).
func buildTestApp(t *testing.T, env string) *testApp {
	t.Helper()
	state := newMemState()
	gw := &stubGateway{payments: make(map[string]*payment.GatewayPayment)}
	store := kv.NewMemoryStore()
	log := logger.Nop()

	cfg := &config.Config{
		App: config.AppConfig{Env: env, Name: "master-color-test"},
		JWT: config.JWTConfig{Secret: testJWTSecret, Expiration: testExpMin, Issuer: testIssuer},
		Webhook: config.WebhookConfig{
			AllowedCIDRs:  []string{"209.225.49.0/24", "127.0.0.1"},
			RateLimit:     50,
			DedupTTLHours: 24,
		},
	}

	tx := memTxRunner{state}
	orderRepo := memOrderRepo{state}
	clientRepo := memClientRepo{state}
	paymentRepo := memPaymentRepo{state}
	movementRepo := memMovementRepo{state}
	stockRepo := memStockRepo{state}
	productRepo := memProductRepo{state}

	deps := apphttp.RouterDeps{
		AuthUC:     auth.NewAuthUseCase(memUserRepo{state}, clientRepo, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log),
		CatalogUC:  catalog.NewCatalogUseCase(productRepo, stockRepo),
		MovementUC: inventory.NewMovementUseCase(tx, movementRepo, log),
		OrderUC:    orders.NewOrderUseCase(tx, orderRepo, clientRepo, nil, log),
		PaymentUC: payment.NewUseCase(tx, paymentRepo, orderRepo, clientRepo, gw, store, nil,
			payment.Config{Currency: "PEN", StatementName: "MasterColor"}, log),
		Store:  store,
		Config: cfg,
		Log:    log,
	}

	app := fiber.New()
	apphttp.Router(app, deps)
	return &testApp{app: app, state: state, gw: gw, store: store}
}

// tokenFor genera un Bearer token con el userID y rol dados.
func tokenFor(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := jwt.Generate(testJWTSecret, strconv.FormatInt(userID, 10), role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// doJSON lanza una petición con cuerpo JSON opcional y headers.
func (ta *testApp) doJSON(t *testing.T, method, path, body string, headers map[string]string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
