package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
	"github.com/GiancarloGO/master-color-api/internal/infrastructure/kv"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Estado compartido de los fakes
// ──────────────────────────────────────────────────────────────────────────────

type world struct {
	orders    map[int64]*entity.Order
	payments  map[int64]*entity.Payment // por pedido
	stocks    map[int64]*entity.Stock   // por producto
	products  map[int64]*entity.Product
	clients   map[int64]*entity.Client
	movements []*entity.StockMovement
	nextID    int64
}

func newWorld() *world {
	return &world{
		orders:   make(map[int64]*entity.Order),
		payments: make(map[int64]*entity.Payment),
		stocks:   make(map[int64]*entity.Stock),
		products: make(map[int64]*entity.Product),
		clients:  make(map[int64]*entity.Client),
		nextID:   1,
	}
}

func (w *world) addProduct(id int64, name string, quantity int64) {
	w.products[id] = &entity.Product{ID: id, Name: name, Active: true}
	w.stocks[id] = &entity.Stock{ID: id, ProductID: id, Quantity: quantity, SalePrice: decimal.NewFromInt(50)}
}

func (w *world) addOrder(id, clientID int64, status string, createdAt time.Time, items ...entity.OrderDetail) {
	w.orders[id] = &entity.Order{
		ID:        id,
		ClientID:  clientID,
		Status:    status,
		Details:   items,
		CreatedAt: createdAt,
	}
}

type worldOrderRepo struct{ w *world }

func (r *worldOrderRepo) Create(o *entity.Order) error {
	o.ID = r.w.nextID
	r.w.nextID++
	r.w.orders[o.ID] = o
	return nil
}

func (r *worldOrderRepo) GetByID(id int64) (*entity.Order, error) {
	o, ok := r.w.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *worldOrderRepo) GetWithDetails(id int64) (*entity.Order, error) { return r.GetByID(id) }

func (r *worldOrderRepo) GetByClient(clientID, orderID int64) (*entity.Order, error) {
	o, err := r.GetByID(orderID)
	if err != nil || o.ClientID != clientID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (r *worldOrderRepo) List(limit, offset int) ([]entity.Order, error) { return nil, nil }
func (r *worldOrderRepo) ListByClient(clientID int64, limit, offset int) ([]entity.Order, error) {
	return nil, nil
}

func (r *worldOrderRepo) UpdateStatus(id int64, status string) error {
	o, ok := r.w.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

func (r *worldOrderRepo) CreateDetail(d *entity.OrderDetail) error { return nil }

type worldPaymentRepo struct{ w *world }

func (r *worldPaymentRepo) Create(p *entity.Payment) error {
	p.ID = r.w.nextID
	r.w.nextID++
	r.w.payments[p.OrderID] = p
	return nil
}

func (r *worldPaymentRepo) GetByID(id int64) (*entity.Payment, error) {
	for _, p := range r.w.payments {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *worldPaymentRepo) GetByOrderAndMethod(orderID int64, method string) (*entity.Payment, error) {
	p, ok := r.w.payments[orderID]
	if !ok || p.PaymentMethod != method {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *worldPaymentRepo) Update(p *entity.Payment) error {
	stored, ok := r.w.payments[p.OrderID]
	if !ok {
		return domain.ErrNotFound
	}
	*stored = *p
	return nil
}

type worldStockRepo struct{ w *world }

func (r *worldStockRepo) get(productID int64) (*entity.Stock, error) {
	s, ok := r.w.stocks[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *worldStockRepo) GetByID(id int64) (*entity.Stock, error)               { return r.get(id) }
func (r *worldStockRepo) GetForUpdate(id int64) (*entity.Stock, error)          { return r.get(id) }
func (r *worldStockRepo) GetByProductID(id int64) (*entity.Stock, error)        { return r.get(id) }
func (r *worldStockRepo) GetForUpdateByProduct(id int64) (*entity.Stock, error) { return r.get(id) }
func (r *worldStockRepo) List(limit, offset int) ([]entity.Stock, error)        { return nil, nil }

func (r *worldStockRepo) UpdateQuantity(id int64, quantity int64) error {
	s, ok := r.w.stocks[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Quantity = quantity
	return nil
}

type worldProductRepo struct{ w *world }

func (r *worldProductRepo) Create(p *entity.Product) error { return nil }
func (r *worldProductRepo) Update(p *entity.Product) error { return nil }
func (r *worldProductRepo) GetByID(id int64) (*entity.Product, error) {
	p, ok := r.w.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
func (r *worldProductRepo) List(limit, offset int) ([]entity.Product, error) { return nil, nil }

type worldMovementRepo struct{ w *world }

func (r *worldMovementRepo) Create(m *entity.StockMovement) error {
	m.ID = r.w.nextID
	r.w.nextID++
	r.w.movements = append(r.w.movements, m)
	return nil
}

func (r *worldMovementRepo) GetByID(id int64) (*entity.StockMovement, error) {
	return nil, domain.ErrNotFound
}
func (r *worldMovementRepo) GetWithDetails(id int64) (*entity.StockMovement, error) {
	return nil, domain.ErrNotFound
}
func (r *worldMovementRepo) List(limit, offset int) ([]entity.StockMovement, error) {
	return nil, nil
}
func (r *worldMovementRepo) Update(m *entity.StockMovement) error          { return nil }
func (r *worldMovementRepo) MarkCanceled(id int64, at time.Time) error     { return nil }
func (r *worldMovementRepo) Delete(id int64) error                         { return nil }
func (r *worldMovementRepo) CreateDetail(d *entity.MovementDetail) error   { return nil }
func (r *worldMovementRepo) DeleteDetails(movementID int64) error          { return nil }

type worldClientRepo struct{ w *world }

func (r *worldClientRepo) GetByID(id int64) (*entity.Client, error) {
	c, ok := r.w.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}
func (r *worldClientRepo) GetByEmail(email string) (*entity.Client, error) {
	return nil, domain.ErrNotFound
}
func (r *worldClientRepo) GetAddress(clientID, addressID int64) (*entity.Address, error) {
	return &entity.Address{ID: addressID, ClientID: clientID}, nil
}

type worldTxRunner struct{ w *world }

func (t *worldTxRunner) RunPayment(ctx context.Context, fn func(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	return fn(
		&worldPaymentRepo{w: t.w},
		&worldOrderRepo{w: t.w},
		&worldMovementRepo{w: t.w},
		&worldStockRepo{w: t.w},
		&worldProductRepo{w: t.w},
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pasarela scripteada
// ──────────────────────────────────────────────────────────────────────────────

type scriptedGateway struct {
	payments    map[string]*GatewayPayment // por ID de pago
	byReference map[string][]GatewayPayment
	preference  *Preference
	err         error // si está seteado, toda llamada falla con este error

	fetchCalls  int
	searchCalls int
	prefCalls   int
}

func newScriptedGateway() *scriptedGateway {
	return &scriptedGateway{
		payments:    make(map[string]*GatewayPayment),
		byReference: make(map[string][]GatewayPayment),
	}
}

func (g *scriptedGateway) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	g.prefCalls++
	if g.err != nil {
		return nil, g.err
	}
	return g.preference, nil
}

func (g *scriptedGateway) FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error) {
	g.fetchCalls++
	if g.err != nil {
		return nil, g.err
	}
	gp, ok := g.payments[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return gp, nil
}

func (g *scriptedGateway) SearchByReference(ctx context.Context, ref string) ([]GatewayPayment, error) {
	g.searchCalls++
	if g.err != nil {
		return nil, g.err
	}
	return g.byReference[ref], nil
}

func newTestUseCase(w *world, gw Gateway, store kv.Store) *UseCase {
	return NewUseCase(
		&worldTxRunner{w: w},
		&worldPaymentRepo{w: w},
		&worldOrderRepo{w: w},
		&worldClientRepo{w: w},
		gw,
		store,
		nil,
		Config{Currency: "PEN", StatementName: "MasterColor"},
		logger.Nop(),
	)
}
