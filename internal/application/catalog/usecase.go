package catalog

import (
	"context"

	"github.com/GiancarloGO/master-color-api/internal/domain/entity"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
)

// StockView es la consulta de inventario de un producto, con la señal de
// stock bajo ya calculada (quantity <= min_stock).
type StockView struct {
	Product  *entity.Product
	Stock    *entity.Stock
	LowStock bool
}

// CatalogUseCase expone el catálogo de productos y la consulta de stock.
type CatalogUseCase struct {
	products repository.ProductRepository
	stocks   repository.StockRepository
}

func NewCatalogUseCase(products repository.ProductRepository, stocks repository.StockRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products, stocks: stocks}
}

// ListProducts lista productos paginados.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, limit, offset int) ([]entity.Product, error) {
	return uc.products.List(limit, offset)
}

// GetProduct devuelve un producto por ID.
func (uc *CatalogUseCase) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	return uc.products.GetByID(id)
}

// GetProductStock devuelve el stock de un producto con la señal de stock bajo.
func (uc *CatalogUseCase) GetProductStock(ctx context.Context, productID int64) (*StockView, error) {
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	stock, err := uc.stocks.GetByProductID(productID)
	if err != nil {
		return nil, err
	}
	return &StockView{Product: product, Stock: stock, LowStock: stock.IsLowStock()}, nil
}
