package inventory

import (
	"context"

	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
	"github.com/georgemunganga/stockdesk/internal/modules/itemform"
)

// SearchField is the column the admin table searches on.
const SearchField = "ItemName"

// API is the slice of the gateway the admin inventory views use.
type API interface {
	itemform.Gateway
	ListItems(ctx context.Context, q gateway.ItemQuery) (*gateway.Page, error)
	DeleteItem(ctx context.Context, id int) error
}

// Connector returns an API bound to the signed-in user's token.
type Connector func(token string) API

// Row is an item as shown in the admin table.
type Row struct {
	gateway.Item
	ImageURL string
}

func rows(api API, items []gateway.Item) []Row {
	out := make([]Row, 0, len(items))
	for _, it := range items {
		out = append(out, Row{Item: it, ImageURL: api.ImageURL(it.ImagePath)})
	}
	return out
}
