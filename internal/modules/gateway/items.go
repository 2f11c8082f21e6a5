package gateway

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
)

func (q ItemQuery) values() url.Values {
	v := url.Values{}
	v.Set("pageNumber", strconv.Itoa(q.PageNumber))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	v.Set("searchTerm", q.SearchTerm)
	if q.SearchField != "" {
		v.Set("searchField", q.SearchField)
	}
	return v
}

// ListItems returns one page of all items (admin view).
func (c *Client) ListItems(ctx context.Context, q ItemQuery) (*Page, error) {
	var p Page
	if err := c.getJSON(ctx, "/items", q.values(), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListSupplierItems returns one page of the signed-in supplier's items.
// The API ignores searchField here.
func (c *Client) ListSupplierItems(ctx context.Context, q ItemQuery) (*Page, error) {
	q.SearchField = ""
	var p Page
	if err := c.getJSON(ctx, "/items/supplier", q.values(), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var suppliers []Supplier
	if err := c.getJSON(ctx, "/items/suppliers", nil, &suppliers); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (c *Client) GetItem(ctx context.Context, id int) (*Item, error) {
	var it Item
	if err := c.getJSON(ctx, "/items/"+strconv.Itoa(id), nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (c *Client) CreateItem(ctx context.Context, in ItemInput) (*Item, error) {
	return c.sendItemForm(ctx, http.MethodPost, "/items", in)
}

func (c *Client) UpdateItem(ctx context.Context, id int, in ItemInput) (*Item, error) {
	return c.sendItemForm(ctx, http.MethodPut, "/items/"+strconv.Itoa(id), in)
}

// UpdateSupplierItem sends a supplier's price/quantity change.
func (c *Client) UpdateSupplierItem(ctx context.Context, id int, u SupplierUpdate) (*Item, error) {
	var it Item
	if err := c.sendJSON(ctx, http.MethodPut, "/items/supplier/"+strconv.Itoa(id), u, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (c *Client) DeleteItem(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/items/"+strconv.Itoa(id), nil, nil, "", nil)
}

func (c *Client) sendItemForm(ctx context.Context, method, path string, in ItemInput) (*Item, error) {
	body, contentType, err := encodeItemForm(in)
	if err != nil {
		return nil, fmt.Errorf("gateway: encoding item form: %w", err)
	}
	var it Item
	if err := c.do(ctx, method, path, nil, body, contentType, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func encodeItemForm(in ItemInput) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"name", in.Name},
		{"price", strconv.FormatFloat(in.Price, 'f', -1, 64)},
		{"quantity", strconv.Itoa(in.Quantity)},
		{"supplierID", strconv.Itoa(in.SupplierID)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if in.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, in.Image.Filename))
		h.Set("Content-Type", in.Image.ContentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(in.Image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
