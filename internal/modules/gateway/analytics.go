package gateway

import "context"

// LeastStockItems returns the items with the lowest quantity on hand.
func (c *Client) LeastStockItems(ctx context.Context) ([]StockLevel, error) {
	var out []StockLevel
	if err := c.getJSON(ctx, "/analytics/least-stock-items", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LeastSupplierStock returns suppliers ordered by lowest total stock.
func (c *Client) LeastSupplierStock(ctx context.Context) ([]SupplierStock, error) {
	var out []SupplierStock
	if err := c.getJSON(ctx, "/analytics/least-supplier-stock", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
