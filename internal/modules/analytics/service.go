package analytics

import (
	"context"

	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

// Point is one bar or slice of a chart.
type Point struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Chart is a titled data series.
type Chart struct {
	Title  string  `json:"title"`
	Kind   string  `json:"kind"` // bar | pie
	Points []Point `json:"points"`
}

// Max is the largest value in the chart, used to scale bars.
func (c Chart) Max() int {
	m := 0
	for _, p := range c.Points {
		if p.Value > m {
			m = p.Value
		}
	}
	return m
}

// API is the part of the gateway the analytics page calls.
type API interface {
	LeastStockItems(ctx context.Context) ([]gateway.StockLevel, error)
	LeastSupplierStock(ctx context.Context) ([]gateway.SupplierStock, error)
}

// Connector returns an API bound to the signed-in user's token.
type Connector func(token string) API

// Service defines the analytics business logic.
type Service interface {
	Charts(ctx context.Context, api API) ([]Chart, error)
}

type service struct{}

// NewService creates a new analytics service.
func NewService() Service { return &service{} }

// Charts fetches both reports, one after the other; the first failure
// aborts.
func (s *service) Charts(ctx context.Context, api API) ([]Chart, error) {
	items, err := api.LeastStockItems(ctx)
	if err != nil {
		return nil, err
	}
	suppliers, err := api.LeastSupplierStock(ctx)
	if err != nil {
		return nil, err
	}

	stock := Chart{Title: "Top 5 Items with Least Stock", Kind: "bar", Points: make([]Point, 0, len(items))}
	for _, it := range items {
		stock.Points = append(stock.Points, Point{ID: it.Name, Label: it.Name, Value: it.Quantity})
	}
	bySupplier := Chart{Title: "Top 5 Suppliers by Lowest Stock", Kind: "pie", Points: make([]Point, 0, len(suppliers))}
	for _, sp := range suppliers {
		bySupplier.Points = append(bySupplier.Points, Point{ID: sp.Username, Label: sp.Username, Value: sp.TotalQuantity})
	}
	return []Chart{stock, bySupplier}, nil
}
