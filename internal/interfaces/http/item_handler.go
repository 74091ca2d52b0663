package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/backbar-app/backbar-api/internal/application/dto"
	"github.com/backbar-app/backbar-api/internal/application/search"
	"github.com/backbar-app/backbar-api/internal/application/usecase"
	"github.com/backbar-app/backbar-api/internal/application/validate"
	"github.com/backbar-app/backbar-api/internal/domain"
	"github.com/backbar-app/backbar-api/internal/domain/entity"
)

// ItemHandler expone el inventario del owner autenticado.
type ItemHandler struct {
	uc *usecase.ItemUseCase
}

// NewItemHandler construye el handler de items.
func NewItemHandler(uc *usecase.ItemUseCase) *ItemHandler {
	return &ItemHandler{uc: uc}
}

// List godoc
// @Summary      Listar items con filtros
// @Description  Filtra por marcas, texto difuso y estado derivado; en ese orden.
// @Tags         items
// @Produce      json
// @Security     Bearer
// @Param        brand    query  []string  false  "Marcas (repetible)"
// @Param        q        query  string    false  "Búsqueda difusa por nombre"
// @Param        status   query  string    false  "low_stock | out_of_stock"
// @Param        refresh  query  bool      false  "Fuerza relectura del remoto"
// @Success      200  {object}  dto.ItemListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
	}

	cr := search.Criteria{Query: c.Query("q")}

	// ?brand= puede repetirse; cada valor debe ser una marca del catálogo.
	for _, raw := range c.Context().QueryArgs().PeekMulti("brand") {
		b := entity.Brand(raw)
		if !b.IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BRAND", Message: "marca desconocida: " + string(raw)})
		}
		cr.Brands = append(cr.Brands, b)
	}

	status := search.Status(c.Query("status"))
	if !status.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_STATUS", Message: "status debe ser low_stock u out_of_stock"})
	}
	cr.Status = status

	out, err := h.uc.List(ownerID, cr, c.QueryBool("refresh"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo obtener el inventario"})
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.CreateItemRequest  true  "Item a crear"
// @Success      201  {object}  dto.ItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
	}
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(ownerID, in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Edit godoc
// @Summary      Editar nombre, marca, cantidad por unidad o umbral
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path  string               true  "ID del item"
// @Param        body  body  dto.EditItemRequest  true  "Campos editables"
// @Success      200  {object}  dto.ItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [put]
func (h *ItemHandler) Edit(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
	}
	var in dto.EditItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Edit(ownerID, c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// IncreaseStock godoc
// @Summary      Incrementar existencias en 1
// @Tags         items
// @Produce      json
// @Security     Bearer
// @Param        id  path  string  true  "ID del item"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/increase [post]
func (h *ItemHandler) IncreaseStock(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
	}
	out, err := h.uc.IncreaseStock(ownerID, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// DecreaseStock godoc
// @Summary      Decrementar existencias en 1 (con piso en cero)
// @Tags         items
// @Produce      json
// @Security     Bearer
// @Param        id  path  string  true  "ID del item"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/decrease [post]
func (h *ItemHandler) DecreaseStock(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
	}
	out, err := h.uc.DecreaseStock(ownerID, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar item
// @Tags         items
// @Security     Bearer
// @Param        id  path  string  true  "ID del item"
// @Success      204  "sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
	}
	if err := h.uc.Delete(ownerID, c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// writeError traduce errores de aplicación a respuestas HTTP.
func (h *ItemHandler) writeError(c *fiber.Ctx, err error) error {
	var fieldsErr *validate.FieldsError
	switch {
	case errors.As(err, &fieldsErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "campos inválidos",
			Fields:  fieldsErr.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item no encontrado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "operación fallida"})
}
