package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/inventory/handlers"
	"github.com/jhoicas/stock-engine/internal/infrastructure/memory"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	itemCable  = "item-cable"
	bodega     = "wh-central"
	zona       = "zone-a"
	posicion   = "bin-a1"
	transito   = "staging"
	operadorID = "00000000-0000-0000-0000-000000000001"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pct(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// clock reloj manual para vencimientos.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(dur time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(dur)
}

// recordingPublisher guarda los eventos publicados.
type recordingPublisher struct {
	mu     sync.Mutex
	events []appinv.MovementEvent
	err    error
}

func (p *recordingPublisher) PublishMovementCompleted(_ context.Context, evt appinv.MovementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// engine motor completo sobre el store en memoria.
type engine struct {
	store        *memory.Store
	clock        *clock
	publisher    *recordingPublisher
	applicator   *appinv.MovementApplicator
	reservations *appinv.ReservationUseCase
	query        *appinv.StockQueryUseCase
}

// newEngine arma la jerarquía wh-central > zone-a > bin-a1 y staging (stock negativo permitido).
func newEngine(t *testing.T) *engine {
	t.Helper()
	store := memory.NewStore()
	now := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

	store.PutLocation(entity.Location{ID: bodega, Type: "warehouse", Name: "Bodega central", CreatedAt: now})
	store.PutLocation(entity.Location{ID: zona, ParentID: bodega, Type: "zone", Name: "Zona A", CreatedAt: now})
	store.PutLocation(entity.Location{ID: posicion, ParentID: zona, Type: "bin", Name: "A1", MaxCapacity: pct("500"), CreatedAt: now})
	store.PutLocation(entity.Location{ID: transito, ParentID: bodega, Type: "staging", Name: "Tránsito", CreatedAt: now})
	store.PutSettings(entity.LocationSettings{LocationID: transito, AllowNegativeStock: true})
	store.PutCatalogItem(entity.CatalogItem{ID: itemCable, SKU: "CAB-UTP6", Name: "Cable UTP cat 6", UnitOfMeasureID: "caja"})

	clk := &clock{t: now}
	pub := &recordingPublisher{}
	registry := inventory.NewHandlerRegistry(handlers.NewLoanHandler(), handlers.NewConsignmentHandler())
	log := logger.Nop()

	applicator := appinv.NewMovementApplicator(appinv.ApplicatorDeps{
		TxRunner:  store,
		Settings:  store,
		Catalog:   store,
		Validator: inventory.NewValidator(store.Lots(), store, registry),
		Handlers:  registry,
		Publisher: pub,
		Logger:    log,
		Clock:     clk.Now,
	})
	return &engine{
		store:        store,
		clock:        clk,
		publisher:    pub,
		applicator:   applicator,
		reservations: appinv.NewReservationUseCase(applicator, store, store.StockItems(), store.Reservations(), log),
		query:        appinv.NewStockQueryUseCase(store.StockItems(), store.Movements(), store, store),
	}
}

func mov(t entity.MovementType, location, qty string) entity.Movement {
	return entity.Movement{
		Type:        t,
		ItemID:      itemCable,
		LocationID:  location,
		Quantity:    d(qty),
		PerformedBy: operadorID,
	}
}

// receive aplica un RECEIPT y exige éxito.
func (e *engine) receive(t *testing.T, location, qty string) *appinv.ProcessResult {
	t.Helper()
	res, err := e.applicator.Process(context.Background(), mov(entity.MovementReceipt, location, qty))
	require.NoError(t, err)
	require.True(t, res.Success, "errores: %v", res.Errors)
	return res
}

// stockAt saldo confirmado (nil si no existe).
func (e *engine) stockAt(t *testing.T, location string) *entity.StockItem {
	t.Helper()
	s, err := e.store.StockItems().Get(context.Background(), entity.StockKey{ItemID: itemCable, LocationID: location})
	require.NoError(t, err)
	return s
}
