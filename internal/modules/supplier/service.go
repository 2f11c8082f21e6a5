package supplier

import (
	"context"
	"strconv"

	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
	"github.com/georgemunganga/stockdesk/internal/modules/inlineedit"
)

// API is the slice of the gateway the supplier dashboard uses.
type API interface {
	inlineedit.Updater
	ListSupplierItems(ctx context.Context, q gateway.ItemQuery) (*gateway.Page, error)
}

// Connector returns an API bound to the signed-in user's token.
type Connector func(token string) API

// Cell is one editable price or quantity cell.
type Cell struct {
	Row     inlineedit.Row
	Field   string
	Editing bool
	Draft   string
	Error   string
	Step    string
	Display string
	Return  string
}

// Row is a supplier table row.
type Row struct {
	ID       int
	Name     string
	Price    Cell
	Quantity Cell
}

func buildRows(items []gateway.Item, st inlineedit.State, back string) []Row {
	out := make([]Row, 0, len(items))
	for _, it := range items {
		committed := inlineedit.Row{ID: it.ID, Price: it.Price, Quantity: it.Quantity}
		out = append(out, Row{
			ID:       it.ID,
			Name:     it.Name,
			Price:    buildCell(committed, inlineedit.FieldPrice, st, back),
			Quantity: buildCell(committed, inlineedit.FieldQuantity, st, back),
		})
	}
	return out
}

func buildCell(row inlineedit.Row, f inlineedit.Field, st inlineedit.State, back string) Cell {
	c := Cell{Row: row, Field: f.String(), Return: back, Step: "1"}
	if f == inlineedit.FieldPrice {
		c.Step = "0.01"
		c.Display = "₹" + strconv.FormatFloat(row.Price, 'f', 2, 64)
	} else {
		c.Display = strconv.Itoa(row.Quantity)
	}
	if st.IsEditing(row.ID, f) {
		c.Editing = true
		c.Draft = st.Draft
		c.Error = st.Error
	}
	return c
}
