package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/stock-engine/internal/application/inventory")

// maxApplyAttempts reintentos ante domain.ErrConcurrentModification.
const maxApplyAttempts = 3

// errValidationFailed fuerza el Rollback cuando la validación rechaza el movimiento.
// Nunca sale del paquete: el llamador recibe ProcessResult{Success: false}.
var errValidationFailed = errors.New("validación rechazada")

// ProcessResult resultado de aplicar un movimiento.
// Success=false significa rechazo por reglas de negocio (Errors): nada se escribió.
type ProcessResult struct {
	Success         bool
	Movement        entity.Movement
	PreviousStock   entity.StockItem
	Stock           entity.StockItem
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	StockCreated    bool // el saldo no existía y se creó en cero
	Errors          []string
	Warnings        []string
}

// PreCheck regla extra evaluada contra el snapshot bloqueado, junto con la validación estándar.
type PreCheck func(stock entity.StockItem, policy entity.LocationSettings) inventory.ValidationResult

// TxHook se ejecuta dentro de la misma transacción después de escribir stock y movimiento.
// Si devuelve error se revierte todo.
type TxHook func(ctx context.Context, repos TxRepos, result *ProcessResult) error

type processConfig struct {
	preChecks []PreCheck
	hooks     []TxHook
	persisted bool // el movimiento ya existe como pending en el almacenamiento
}

// ProcessOption modifica la aplicación de un movimiento.
type ProcessOption func(*processConfig)

// WithPreCheck agrega una regla evaluada bajo el bloqueo de fila.
func WithPreCheck(check PreCheck) ProcessOption {
	return func(c *processConfig) { c.preChecks = append(c.preChecks, check) }
}

// WithinTx agrega escrituras adicionales a la transacción del movimiento.
func WithinTx(hook TxHook) ProcessOption {
	return func(c *processConfig) { c.hooks = append(c.hooks, hook) }
}

func asPersisted() ProcessOption {
	return func(c *processConfig) { c.persisted = true }
}

// ApplicatorDeps dependencias del aplicador de movimientos.
type ApplicatorDeps struct {
	TxRunner  TxRunner
	Settings  repository.LocationSettingsRepository
	Catalog   repository.CatalogGateway // opcional: unidad de medida al crear saldos
	Validator *inventory.Validator
	Handlers  *inventory.HandlerRegistry
	Publisher EventPublisher // opcional
	Logger    *logger.Logger // opcional
	Clock     func() time.Time
}

// MovementApplicator aplica movimientos de forma transaccional: bloquea el saldo
// (SELECT FOR UPDATE), valida contra el snapshot bloqueado, transforma y persiste
// stock + movimiento en la misma transacción.
type MovementApplicator struct {
	txRunner  TxRunner
	settings  repository.LocationSettingsRepository
	catalog   repository.CatalogGateway
	validator *inventory.Validator
	handlers  *inventory.HandlerRegistry
	publisher EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewMovementApplicator construye el aplicador.
func NewMovementApplicator(deps ApplicatorDeps) *MovementApplicator {
	a := &MovementApplicator{
		txRunner:  deps.TxRunner,
		settings:  deps.Settings,
		catalog:   deps.Catalog,
		validator: deps.Validator,
		handlers:  deps.Handlers,
		publisher: deps.Publisher,
		log:       deps.Logger,
		now:       deps.Clock,
	}
	if a.publisher == nil {
		a.publisher = NoopPublisher{}
	}
	if a.log == nil {
		a.log = logger.Nop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.validator == nil {
		a.validator = inventory.NewValidator(nil, nil, a.handlers)
	}
	return a
}

// Process aplica un movimiento. Los rechazos de negocio devuelven (result{Success:false}, nil);
// error solo para fallos de integridad (saldo inexistente, handler faltante) o de infraestructura.
func (a *MovementApplicator) Process(ctx context.Context, m entity.Movement, opts ...ProcessOption) (*ProcessResult, error) {
	var cfg processConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	m = a.prepare(m)

	ctx, span := tracer.Start(ctx, "inventory.ProcessMovement", trace.WithAttributes(
		attribute.String("movement.id", m.ID),
		attribute.String("movement.type", string(m.Type)),
		attribute.String("stock.item_id", m.ItemID),
		attribute.String("stock.location_id", m.LocationID),
	))
	defer span.End()

	policy, err := a.policyFor(ctx, m.LocationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var result *ProcessResult
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		result, err = a.processOnce(ctx, m, policy, cfg)
		if !errors.Is(err, domain.ErrConcurrentModification) {
			break
		}
		a.log.Warn().Str("movement_id", m.ID).Int("attempt", attempt).Msg("modificación concurrente del stock, reintentando")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.log.Error().Err(err).Str("movement_id", m.ID).Str("type", string(m.Type)).Msg("fallo aplicando movimiento")
		return nil, err
	}

	span.SetAttributes(attribute.Bool("movement.success", result.Success))
	if !result.Success {
		a.log.Info().Str("movement_id", m.ID).Strs("errors", result.Errors).Msg("movimiento rechazado")
		return result, nil
	}

	a.log.Info().
		Str("movement_id", result.Movement.ID).
		Str("type", string(result.Movement.Type)).
		Str("stock_key", result.Stock.Key().String()).
		Str("previous_balance", result.PreviousBalance.String()).
		Str("new_balance", result.NewBalance.String()).
		Msg("movimiento aplicado")
	a.publish(ctx, result)
	return result, nil
}

// processOnce una transacción completa; errValidationFailed se traduce a resultado sin error.
func (a *MovementApplicator) processOnce(ctx context.Context, m entity.Movement, policy entity.LocationSettings, cfg processConfig) (*ProcessResult, error) {
	var result *ProcessResult
	err := a.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		res, err := a.applyInTx(ctx, repos, m, policy, cfg)
		result = res
		return err
	})
	if errors.Is(err, errValidationFailed) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyInTx pasos del movimiento dentro de una transacción abierta.
// Devuelve errValidationFailed (con result poblado) cuando las reglas lo rechazan.
func (a *MovementApplicator) applyInTx(
	ctx context.Context,
	repos TxRepos,
	m entity.Movement,
	policy entity.LocationSettings,
	cfg processConfig,
) (*ProcessResult, error) {
	now := a.now()
	key := m.StockKey()

	// ── 1. Bloquear saldo ─────────────────────────────────────────────────────
	current, err := repos.Stock.GetForUpdate(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("bloquear saldo %s: %w", key, err)
	}

	// ── 2. Validar contra el snapshot bloqueado ───────────────────────────────
	validation, err := a.validator.Validate(ctx, m, current, policy, now)
	if err != nil {
		return nil, err
	}
	snapshot := entity.NewStockItem("", key, "", now)
	if current != nil {
		snapshot = *current
	}
	for _, check := range cfg.preChecks {
		validation.Merge(check(snapshot, policy))
	}
	if !validation.IsValid() {
		return &ProcessResult{
			Success:         false,
			Movement:        m,
			PreviousStock:   snapshot,
			Stock:           snapshot,
			PreviousBalance: snapshot.Quantity,
			NewBalance:      snapshot.Quantity,
			Errors:          validation.Errors,
			Warnings:        validation.Warnings,
		}, errValidationFailed
	}

	// ── 3. Crear saldo si no existe (solo movimientos que pueden crearlo) ────
	created := false
	if current == nil {
		if !inventory.CanCreateStock(m, a.handlers) {
			return nil, fmt.Errorf("movimiento %s (%s) sobre %s: %w", m.ID, m.Type, key, domain.ErrStockItemNotFound)
		}
		seed := entity.NewStockItem(uuid.New().String(), key, a.unitOfMeasure(ctx, m.ItemID), now)
		if err := repos.Stock.CreateIfAbsent(ctx, seed); err != nil {
			return nil, fmt.Errorf("crear saldo %s: %w", key, err)
		}
		current, err = repos.Stock.GetForUpdate(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("bloquear saldo creado %s: %w", key, err)
		}
		if current == nil {
			return nil, fmt.Errorf("crear saldo %s: %w", key, domain.ErrStockItemNotFound)
		}
		created = true
	}
	previous := *current

	// ── 4. Transformar y persistir ────────────────────────────────────────────
	next, err := inventory.ApplyTransform(m, previous, a.handlers, now)
	if err != nil {
		return nil, err
	}
	if err := a.registerLot(ctx, repos.Lots, m, now); err != nil {
		return nil, err
	}
	saved, err := repos.Stock.Update(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("guardar saldo %s: %w", key, err)
	}

	completed := m.Complete(now)
	if cfg.persisted {
		err = repos.Movements.Save(ctx, completed)
	} else {
		err = repos.Movements.Create(ctx, completed)
	}
	if err != nil {
		return nil, fmt.Errorf("registrar movimiento %s: %w", m.ID, err)
	}

	result := &ProcessResult{
		Success:         true,
		Movement:        completed,
		PreviousStock:   previous,
		Stock:           saved,
		PreviousBalance: previous.Quantity,
		NewBalance:      saved.Quantity,
		StockCreated:    created,
		Warnings:        validation.Warnings,
	}
	for _, hook := range cfg.hooks {
		if err := hook(ctx, repos, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// prepare completa ID, estado y timestamps del movimiento.
func (a *MovementApplicator) prepare(m entity.Movement) entity.Movement {
	now := a.now()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Status == "" {
		m.Status = entity.MovementStatusPending
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	return m
}

// policyFor política de la ubicación; sin configuración se usa la estricta por defecto.
func (a *MovementApplicator) policyFor(ctx context.Context, locationID string) (entity.LocationSettings, error) {
	if a.settings == nil || locationID == "" {
		return entity.DefaultLocationSettings(locationID), nil
	}
	s, err := a.settings.FindByLocationID(ctx, locationID)
	if err != nil {
		return entity.LocationSettings{}, fmt.Errorf("política de ubicación %s: %w", locationID, err)
	}
	if s == nil {
		return entity.DefaultLocationSettings(locationID), nil
	}
	return *s, nil
}

// unitOfMeasure consulta el catálogo; si no responde el saldo queda sin unidad.
func (a *MovementApplicator) unitOfMeasure(ctx context.Context, itemID string) string {
	if a.catalog == nil {
		return ""
	}
	item, err := a.catalog.GetItem(ctx, itemID)
	if err != nil {
		a.log.Warn().Err(err).Str("item_id", itemID).Msg("catálogo no disponible, saldo sin unidad de medida")
		return ""
	}
	if item == nil {
		return ""
	}
	return item.UnitOfMeasureID
}

// registerLot registra el lote de una entrada que lo trae (metadata "lot_expires_at" opcional).
func (a *MovementApplicator) registerLot(ctx context.Context, lots repository.LotRepository, m entity.Movement, now time.Time) error {
	if m.LotID == "" || lots == nil || !inventory.CanCreateStock(m, a.handlers) {
		return nil
	}
	lot := entity.Lot{LotNumber: m.LotID, ItemID: m.ItemID, CreatedAt: now}
	if raw := m.MetadataString("lot_expires_at"); raw != "" {
		exp, err := parseLotExpiry(raw)
		if err != nil {
			return fmt.Errorf("%w: lot_expires_at %q", domain.ErrInvalidInput, raw)
		}
		lot.ExpiresAt = &exp
	}
	if err := lots.CreateIfAbsent(ctx, lot); err != nil {
		return fmt.Errorf("registrar lote %s: %w", m.LotID, err)
	}
	return nil
}

func parseLotExpiry(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

// publish evento post-commit; un fallo se registra pero no revierte nada.
func (a *MovementApplicator) publish(ctx context.Context, result *ProcessResult) {
	evt := MovementEvent{
		Movement:      result.Movement,
		PreviousStock: result.PreviousStock,
		Stock:         result.Stock,
		OccurredAt:    a.now(),
	}
	if err := a.publisher.PublishMovementCompleted(ctx, evt); err != nil {
		a.log.Warn().Err(err).Str("movement_id", result.Movement.ID).Msg("no se pudo publicar el evento del movimiento")
	}
}
