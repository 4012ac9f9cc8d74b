package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// InventoryHandler maneja las peticiones HTTP de movimientos, saldos y reportes (protegido).
type InventoryHandler struct {
	applicator *appinv.MovementApplicator
	query      *appinv.StockQueryUseCase
	reports    *appinv.ReportUseCase
	log        *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	applicator *appinv.MovementApplicator,
	query *appinv.StockQueryUseCase,
	reports *appinv.ReportUseCase,
	log *logger.Logger,
) *InventoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InventoryHandler{applicator: applicator, query: query, reports: reports, log: log}
}

// RegisterMovement godoc
// @Summary      Aplicar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "type, item_id, location_id, quantity (custom_type si type=custom)"
// @Success      201   {object}  dto.ProcessResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ProcessResultResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	result, err := h.applicator.Process(c.UserContext(), movementFromRequest(c, in))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(resultStatus(result.Success, fiber.StatusCreated)).JSON(toProcessResultResponse(result))
}

// SubmitPending godoc
// @Summary      Registrar movimiento pendiente (sin afectar saldo)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "movimiento a aprobar"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/pending [post]
func (h *InventoryHandler) SubmitPending(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.applicator.SubmitPending(c.UserContext(), movementFromRequest(c, in))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(m))
}

// ProcessPending godoc
// @Summary      Aplicar un movimiento pendiente
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del movimiento"
// @Success      200  {object}  dto.ProcessResultResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ProcessResultResponse
// @Router       /api/inventory/movements/{id}/process [post]
func (h *InventoryHandler) ProcessPending(c *fiber.Ctx) error {
	result, err := h.applicator.ProcessPending(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(resultStatus(result.Success, fiber.StatusOK)).JSON(toProcessResultResponse(result))
}

// Transfer godoc
// @Summary      Traslado entre ubicaciones (transfer_out + transfer_in atómicos)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "item_id, origen, destino, cantidad"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.TransferResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	result, err := h.applicator.Transfer(c.UserContext(), appinv.TransferInput{
		ItemID:                in.ItemID,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		LotID:                 in.LotID,
		Quantity:              in.Quantity,
		ReferenceType:         in.ReferenceType,
		ReferenceID:           in.ReferenceID,
		Reason:                in.Reason,
		PerformedBy:           GetUserID(c),
		WorkspaceID:           GetWorkspaceID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(resultStatus(result.Success, fiber.StatusCreated)).JSON(toTransferResponse(result))
}

// GetStock godoc
// @Summary      Saldo de un producto en una ubicación (y lote)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  true   "Producto"
// @Param        location_id  query  string  true   "Ubicación"
// @Param        lot_id       query  string  false  "Lote"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	item, err := h.query.GetStock(c.UserContext(), entity.StockKey{
		ItemID:     c.Query("item_id"),
		LocationID: c.Query("location_id"),
		LotID:      c.Query("lot_id"),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toStockItemResponse(*item))
}

// ListItemStock godoc
// @Summary      Saldos de un producto en todas las ubicaciones
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        itemID  path  string  true  "Producto"
// @Success      200  {array}  dto.StockItemResponse
// @Router       /api/inventory/items/{itemID}/stock [get]
func (h *InventoryHandler) ListItemStock(c *fiber.Ctx) error {
	list, err := h.query.ListByItem(c.UserContext(), c.Params("itemID"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toStockList(list))
}

// History godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Producto"
// @Param        location_id  query  string  false  "Ubicación"
// @Param        from         query  string  false  "RFC3339"
// @Param        to           query  string  false  "RFC3339"
// @Param        limit        query  int     false  "Máximo de filas"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.Normalize()
	filter := repository.MovementFilter{
		ItemID:     c.Query("item_id"),
		LocationID: c.Query("location_id"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from debe ser RFC3339"})
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to debe ser RFC3339"})
	}
	list, err := h.query.History(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: toMovementList(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// MovementsByReference godoc
// @Summary      Movimientos de un documento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        reference_type  query  string  true  "Tipo de documento"
// @Param        reference_id    query  string  true  "ID del documento"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/movements/by-reference [get]
func (h *InventoryHandler) MovementsByReference(c *fiber.Ctx) error {
	refType, refID := c.Query("reference_type"), c.Query("reference_id")
	if refType == "" || refID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reference_type y reference_id son obligatorios"})
	}
	list, err := h.query.MovementsByReference(c.UserContext(), refType, refID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toMovementList(list))
}

// Rollup godoc
// @Summary      Saldo agregado de una ubicación y todo su subárbol
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Ubicación raíz"
// @Success      200  {array}   dto.StockRollupResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/locations/{id}/rollup [get]
func (h *InventoryHandler) Rollup(c *fiber.Ctx) error {
	list, err := h.query.RollupSubtree(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toRollupList(list))
}

// StockReportPDF godoc
// @Summary      Reporte PDF de saldos del subárbol
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "Ubicación raíz"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/locations/{id}/report.pdf [get]
func (h *InventoryHandler) StockReportPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.reports.StockReportPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(pdfBytes)))
	return c.Send(pdfBytes)
}

// SearchCatalog godoc
// @Summary      Buscar productos del catálogo por SKU o nombre
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        q      query  string  true   "Término (sin distinguir tildes ni mayúsculas)"
// @Param        limit  query  int     false  "Máximo de resultados"
// @Success      200  {array}  dto.CatalogItemResponse
// @Router       /api/catalog/items [get]
func (h *InventoryHandler) SearchCatalog(c *fiber.Ctx) error {
	list, err := h.query.SearchCatalog(c.UserContext(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toCatalogList(list))
}

func movementFromRequest(c *fiber.Ctx, in dto.RegisterMovementRequest) entity.Movement {
	return entity.Movement{
		Type:          entity.MovementType(in.Type),
		CustomType:    in.CustomType,
		ItemID:        in.ItemID,
		LocationID:    in.LocationID,
		LotID:         in.LotID,
		Quantity:      in.Quantity,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Reason:        in.Reason,
		Metadata:      in.Metadata,
		PerformedBy:   GetUserID(c),
		WorkspaceID:   GetWorkspaceID(c),
	}
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
