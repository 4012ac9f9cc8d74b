package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// ReservationHandler maneja las peticiones HTTP del libro de reservas (protegido).
type ReservationHandler struct {
	uc  *appinv.ReservationUseCase
	log *logger.Logger
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *appinv.ReservationUseCase, log *logger.Logger) *ReservationHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReservationHandler{uc: uc, log: log}
}

// Validate godoc
// @Summary      Pre-chequeo de reserva (sin efectos)
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationCheckRequest  true  "item_id, location_id, quantity"
// @Success      200   {object}  dto.ReservationCheckResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reservations/validate [post]
func (h *ReservationHandler) Validate(c *fiber.Ctx) error {
	var in dto.ReservationCheckRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	chk, err := h.uc.ValidateReservation(c.UserContext(), appinv.ReservationCheckInput{
		ItemID:     in.ItemID,
		LocationID: in.LocationID,
		LotID:      in.LotID,
		Quantity:   in.Quantity,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toReservationCheckResponse(chk))
}

// Create godoc
// @Summary      Crear reserva (active, o pending si require_approval)
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "datos de la reserva"
// @Success      201   {object}  dto.ReservationResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ReservationResultResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	result, err := h.uc.CreateReservation(c.UserContext(), appinv.CreateReservationInput{
		ItemID:          in.ItemID,
		LocationID:      in.LocationID,
		LotID:           in.LotID,
		Quantity:        in.Quantity,
		ReservedBy:      GetUserID(c),
		ReferenceType:   in.ReferenceType,
		ReferenceID:     in.ReferenceID,
		Reason:          in.Reason,
		WorkspaceID:     GetWorkspaceID(c),
		ExpiresAt:       in.ExpiresAt,
		RequireApproval: in.RequireApproval,
		Validate:        in.Validate,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(resultStatus(result.Success, fiber.StatusCreated)).JSON(toReservationResultResponse(result))
}

// Release godoc
// @Summary      Liberar una reserva (por reservation_id o por saldo)
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReleaseReservationRequest  true  "reservation_id o item/location/quantity"
// @Success      200   {object}  dto.ReservationResultResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ReservationResultResponse
// @Router       /api/reservations/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	var in dto.ReleaseReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	result, err := h.uc.ReleaseReservation(c.UserContext(), appinv.ReleaseReservationInput{
		ReservationID: in.ReservationID,
		ItemID:        in.ItemID,
		LocationID:    in.LocationID,
		LotID:         in.LotID,
		Quantity:      in.Quantity,
		PerformedBy:   GetUserID(c),
		Reason:        in.Reason,
		WorkspaceID:   GetWorkspaceID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(resultStatus(result.Success, fiber.StatusOK)).JSON(toReservationResultResponse(result))
}

// Approve godoc
// @Summary      Aprobar una reserva pendiente
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResultResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ReservationResultResponse
// @Router       /api/reservations/{id}/approve [post]
func (h *ReservationHandler) Approve(c *fiber.Ctx) error {
	result, err := h.uc.ApproveReservation(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(resultStatus(result.Success, fiber.StatusOK)).JSON(toReservationResultResponse(result))
}

// Reject godoc
// @Summary      Rechazar una reserva pendiente
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/reject [post]
func (h *ReservationHandler) Reject(c *fiber.Ctx) error {
	res, err := h.uc.RejectReservation(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toReservationResponse(res))
}

// GetByID godoc
// @Summary      Obtener reserva por ID
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	res, err := h.uc.GetReservation(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toReservationResponse(res))
}

// ListByReference godoc
// @Summary      Reservas de un documento
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        reference_type  query  string  true  "Tipo de documento"
// @Param        reference_id    query  string  true  "ID del documento"
// @Success      200  {array}  dto.ReservationResponse
// @Router       /api/reservations [get]
func (h *ReservationHandler) ListByReference(c *fiber.Ctx) error {
	refType, refID := c.Query("reference_type"), c.Query("reference_id")
	if refType == "" || refID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reference_type y reference_id son obligatorios"})
	}
	list, err := h.uc.ListByReference(c.UserContext(), refType, refID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.ReservationResponse, 0, len(list))
	for i := range list {
		out = append(out, *toReservationResponse(&list[i]))
	}
	return c.JSON(out)
}
