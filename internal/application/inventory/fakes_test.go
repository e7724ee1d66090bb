package inventory_test

import (
	"context"
	"time"

	"github.com/GiancarloGO/master-color-api/internal/application/inventory"
	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

var noplog = logger.Nop()

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de repositorio. El runner de transacciones
// toma una copia del estado antes de ejecutar y lo restaura si fn falla, para
// reproducir la semántica todo-o-nada de la transacción real.
// ──────────────────────────────────────────────────────────────────────────────

type fakeState struct {
	stocks    map[int64]*entity.Stock
	products  map[int64]*entity.Product
	movements map[int64]*entity.StockMovement
	details   map[int64][]entity.MovementDetail // por movimiento
	nextMovID int64
	nextDetID int64
}

func newFakeState() *fakeState {
	return &fakeState{
		stocks:    make(map[int64]*entity.Stock),
		products:  make(map[int64]*entity.Product),
		movements: make(map[int64]*entity.StockMovement),
		details:   make(map[int64][]entity.MovementDetail),
		nextMovID: 1,
		nextDetID: 1,
	}
}

func (s *fakeState) addProduct(id int64, name string, quantity int64) {
	s.products[id] = &entity.Product{ID: id, Name: name, Active: true}
	s.stocks[id] = &entity.Stock{ID: id, ProductID: id, Quantity: quantity}
}

func (s *fakeState) snapshot() *fakeState {
	c := newFakeState()
	c.nextMovID = s.nextMovID
	c.nextDetID = s.nextDetID
	for k, v := range s.stocks {
		cp := *v
		c.stocks[k] = &cp
	}
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	for k, v := range s.movements {
		cp := *v
		cp.Details = append([]entity.MovementDetail(nil), v.Details...)
		c.movements[k] = &cp
	}
	for k, v := range s.details {
		c.details[k] = append([]entity.MovementDetail(nil), v...)
	}
	return c
}

func (s *fakeState) restore(from *fakeState) { *s = *from }

// ── stock ────────────────────────────────────────────────────────────────────

type fakeStockRepo struct{ s *fakeState }

func (r *fakeStockRepo) find(id int64) (*entity.Stock, error) {
	st, ok := r.s.stocks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (r *fakeStockRepo) GetByID(id int64) (*entity.Stock, error)      { return r.find(id) }
func (r *fakeStockRepo) GetForUpdate(id int64) (*entity.Stock, error) { return r.find(id) }

func (r *fakeStockRepo) GetByProductID(productID int64) (*entity.Stock, error) {
	for _, st := range r.s.stocks {
		if st.ProductID == productID {
			cp := *st
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeStockRepo) GetForUpdateByProduct(productID int64) (*entity.Stock, error) {
	return r.GetByProductID(productID)
}

func (r *fakeStockRepo) List(limit, offset int) ([]entity.Stock, error) {
	out := make([]entity.Stock, 0, len(r.s.stocks))
	for _, st := range r.s.stocks {
		out = append(out, *st)
	}
	return out, nil
}

func (r *fakeStockRepo) UpdateQuantity(id int64, quantity int64) error {
	st, ok := r.s.stocks[id]
	if !ok {
		return domain.ErrNotFound
	}
	st.Quantity = quantity
	return nil
}

// ── productos ────────────────────────────────────────────────────────────────

type fakeProductRepo struct{ s *fakeState }

func (r *fakeProductRepo) Create(p *entity.Product) error { r.s.products[p.ID] = p; return nil }
func (r *fakeProductRepo) Update(p *entity.Product) error { r.s.products[p.ID] = p; return nil }

func (r *fakeProductRepo) GetByID(id int64) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) List(limit, offset int) ([]entity.Product, error) { return nil, nil }

// ── movimientos ──────────────────────────────────────────────────────────────

type fakeMovementRepo struct{ s *fakeState }

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	m.ID = r.s.nextMovID
	r.s.nextMovID++
	m.CreatedAt = time.Now()
	cp := *m
	r.s.movements[m.ID] = &cp
	return nil
}

func (r *fakeMovementRepo) GetByID(id int64) (*entity.StockMovement, error) {
	m, ok := r.s.movements[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMovementRepo) GetWithDetails(id int64) (*entity.StockMovement, error) {
	m, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	m.Details = append([]entity.MovementDetail(nil), r.s.details[id]...)
	return m, nil
}

func (r *fakeMovementRepo) List(limit, offset int) ([]entity.StockMovement, error) {
	out := make([]entity.StockMovement, 0, len(r.s.movements))
	for _, m := range r.s.movements {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMovementRepo) Update(m *entity.StockMovement) error {
	stored, ok := r.s.movements[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.MovementType = m.MovementType
	stored.Reason = m.Reason
	stored.VoucherNumber = m.VoucherNumber
	return nil
}

func (r *fakeMovementRepo) MarkCanceled(id int64, at time.Time) error {
	m, ok := r.s.movements[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.CanceledAt = &at
	return nil
}

func (r *fakeMovementRepo) Delete(id int64) error {
	delete(r.s.movements, id)
	return nil
}

func (r *fakeMovementRepo) CreateDetail(d *entity.MovementDetail) error {
	d.ID = r.s.nextDetID
	r.s.nextDetID++
	r.s.details[d.StockMovementID] = append(r.s.details[d.StockMovementID], *d)
	return nil
}

func (r *fakeMovementRepo) DeleteDetails(movementID int64) error {
	delete(r.s.details, movementID)
	return nil
}

// ── tx runner ────────────────────────────────────────────────────────────────

type fakeTxRunner struct{ s *fakeState }

func (t *fakeTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	backup := t.s.snapshot()
	err := fn(&fakeMovementRepo{s: t.s}, &fakeStockRepo{s: t.s}, &fakeProductRepo{s: t.s})
	if err != nil {
		t.s.restore(backup)
	}
	return err
}

// newUseCase arma el caso de uso sobre un estado fake.
func newUseCase(s *fakeState) *inventory.MovementUseCase {
	return inventory.NewMovementUseCase(&fakeTxRunner{s: s}, &fakeMovementRepo{s: s}, noplog)
}
