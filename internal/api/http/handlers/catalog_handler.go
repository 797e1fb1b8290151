package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/yanryp/servicedesk-sub004/internal/api/dto"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/service"
)

// CatalogService serves templates, schemas and master data.
type CatalogService interface {
	Template(ctx context.Context, id string) (*domain.Template, error)
	Fields(ctx context.Context, templateID string) ([]domain.FieldDefinition, error)
	Options(ctx context.Context, fieldName string) ([]domain.MasterDataOption, error)
	Prefill(ctx context.Context, user *domain.User, templateID string) (*service.PrefillResult, error)
	RefreshTemplate(ctx context.Context, templateID string) error
	RefreshMasterData(ctx context.Context, fieldName string) error
}

// CatalogHandler exposes the template catalog.
type CatalogHandler struct {
	catalog CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GetTemplate GET /templates/:id.
func (h *CatalogHandler) GetTemplate(c *fiber.Ctx) error {
	tpl, err := h.catalog.Template(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTemplateResponse(tpl)})
}

// GetFields GET /templates/:id/fields.
func (h *CatalogHandler) GetFields(c *fiber.Ctx) error {
	id := c.Params("id")
	schema, err := h.catalog.Fields(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FieldsResponse{TemplateID: id, Fields: dto.NewFieldDefinitions(schema)}})
}

// Prefill GET /templates/:id/prefill.
func (h *CatalogHandler) Prefill(c *fiber.Ctx) error {
	user, err := principalUser(c)
	if err != nil {
		return err
	}
	result, err := h.catalog.Prefill(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PrefillResponse{
		Template:       dto.NewTemplateResponse(result.Template),
		Fields:         dto.NewFieldDefinitions(result.Fields),
		Values:         result.Values,
		Autofilled:     result.Autofilled,
		Classification: result.Classification,
	}})
}

// GetMasterData GET /master-data/:field.
func (h *CatalogHandler) GetMasterData(c *fiber.Ctx) error {
	field := c.Params("field")
	options, err := h.catalog.Options(c.UserContext(), field)
	if err != nil {
		return err
	}
	if options == nil {
		options = []domain.MasterDataOption{}
	}
	return c.JSON(fiber.Map{"data": dto.MasterDataResponse{Field: field, Options: options}})
}

// RefreshTemplate DELETE /cache/templates/:id.
func (h *CatalogHandler) RefreshTemplate(c *fiber.Ctx) error {
	if err := h.catalog.RefreshTemplate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RefreshMasterData DELETE /cache/master-data/:field.
func (h *CatalogHandler) RefreshMasterData(c *fiber.Ctx) error {
	if err := h.catalog.RefreshMasterData(c.UserContext(), c.Params("field")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
