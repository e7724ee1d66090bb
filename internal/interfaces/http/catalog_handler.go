package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GiancarloGO/master-color-api/internal/application/catalog"
	"github.com/GiancarloGO/master-color-api/internal/application/dto"
)

// CatalogHandler expone el catálogo público de productos.
type CatalogHandler struct {
	uc *catalog.CatalogUseCase
}

func NewCatalogHandler(uc *catalog.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// List lista los productos del catálogo.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	products, err := h.uc.ListProducts(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, dto.ToProductResponse(&products[i]))
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

// GetByID devuelve un producto.
func (h *CatalogHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	product, err := h.uc.GetProduct(c.Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.ToProductResponse(product))
}

// GetStock devuelve el stock de un producto con la señal de stock bajo.
func (h *CatalogHandler) GetStock(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	view, err := h.uc.GetProductStock(c.Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.StockResponse{
		ProductID: view.Product.ID,
		Name:      view.Product.Name,
		Quantity:  view.Stock.Quantity,
		MinStock:  view.Stock.MinStock,
		MaxStock:  view.Stock.MaxStock,
		SalePrice: view.Stock.SalePrice,
		LowStock:  view.LowStock,
	})
}
