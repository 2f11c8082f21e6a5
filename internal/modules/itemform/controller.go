// Package itemform drives the admin create/edit item form.
package itemform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

// PNGType is the only image type the API stores.
const PNGType = "image/png"

// Form messages.
const (
	ErrOnlyPNG         = "Only PNG images are allowed."
	ErrSelectSupplier  = "Please select a supplier."
	ErrNameRequired    = "Item name is required."
	ErrPriceInvalid    = "Price must be a non-negative number."
	ErrQuantityInvalid = "Quantity must be a non-negative whole number."
)

// ErrInvalidID is returned by New for an item id that is not a number.
var ErrInvalidID = errors.New("invalid item id")

type State int

const (
	Loading State = iota
	Ready
	Submitting
	Success
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// Gateway is the part of the API the form needs.
type Gateway interface {
	ListSuppliers(ctx context.Context) ([]gateway.Supplier, error)
	GetItem(ctx context.Context, id int) (*gateway.Item, error)
	CreateItem(ctx context.Context, in gateway.ItemInput) (*gateway.Item, error)
	UpdateItem(ctx context.Context, id int, in gateway.ItemInput) (*gateway.Item, error)
	ImageURL(path string) string
}

// Values are the raw form fields as typed by the user.
type Values struct {
	Name       string
	Price      string
	Quantity   string
	SupplierID int
}

// View is a snapshot for rendering.
type View struct {
	State     State
	Editing   bool
	ItemID    int
	Values    Values
	Suppliers []gateway.Supplier
	ImageName string
	Preview   string
	Error     string
}

// Controller holds one form's draft state. Results of fetches that finish
// after Close are dropped.
type Controller struct {
	gw     Gateway
	itemID int

	mu        sync.Mutex
	alive     bool
	state     State
	values    Values
	suppliers []gateway.Supplier
	image     *gateway.Image
	preview   string
	err       string
}

// New creates a controller. An empty id means a new item.
func New(gw Gateway, id string) (*Controller, error) {
	c := &Controller{gw: gw, alive: true, state: Ready}
	if id != "" {
		n, err := strconv.Atoi(id)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		c.itemID = n
		c.state = Loading
	}
	return c, nil
}

func (c *Controller) Editing() bool { return c.itemID != 0 }

// Close marks the form as gone; late fetch results are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = false
}

// apply runs fn under the lock if the form is still alive.
func (c *Controller) apply(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return false
	}
	fn()
	return true
}

// Load fetches the supplier list and, when editing, the item. Both fetches
// run concurrently. Load returns when both are done or ctx ends, whichever
// comes first.
func (c *Controller) Load(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		suppliers, err := c.gw.ListSuppliers(ctx)
		c.apply(func() {
			if err != nil {
				c.err = "Failed to fetch suppliers: " + gateway.ErrorMessage(err)
				return
			}
			c.suppliers = suppliers
		})
	}()

	if c.Editing() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			it, err := c.gw.GetItem(ctx, c.itemID)
			c.apply(func() {
				defer func() { c.state = Ready }()
				if err != nil {
					c.err = "Failed to load item data: " + gateway.ErrorMessage(err)
					return
				}
				c.values = Values{
					Name:       it.Name,
					Price:      strconv.FormatFloat(it.Price, 'f', -1, 64),
					Quantity:   strconv.Itoa(it.Quantity),
					SupplierID: it.SupplierID,
				}
				c.preview = c.gw.ImageURL(it.ImagePath)
			})
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (c *Controller) SetValues(v Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = v
}

// AttachImage accepts only PNG files. A rejected file leaves any previous
// selection cleared and sets the form error; the form stays submittable.
func (c *Controller) AttachImage(img gateway.Image) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if img.ContentType != PNGType || http.DetectContentType(img.Data) != PNGType {
		c.image = nil
		c.err = ErrOnlyPNG
		return false
	}
	c.err = ""
	c.image = &img
	return true
}

// Submit validates the values and sends them as a create or update. On
// success the state is Success; otherwise it returns to Ready with the
// error set, and the error is returned.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return errors.New("submit already in progress")
	}
	c.err = ""
	in, msg := c.input()
	if msg != "" {
		c.err = msg
		c.state = Ready
		c.mu.Unlock()
		return errors.New(msg)
	}
	c.state = Submitting
	c.mu.Unlock()

	var err error
	if c.Editing() {
		_, err = c.gw.UpdateItem(ctx, c.itemID, in)
	} else {
		_, err = c.gw.CreateItem(ctx, in)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.err = gateway.ErrorMessage(err)
		c.state = Ready
		return err
	}
	c.state = Success
	return nil
}

// input must be called with mu held.
func (c *Controller) input() (gateway.ItemInput, string) {
	v := c.values
	name := strings.TrimSpace(v.Name)
	if name == "" {
		return gateway.ItemInput{}, ErrNameRequired
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(v.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return gateway.ItemInput{}, ErrPriceInvalid
	}
	qty, err := strconv.Atoi(strings.TrimSpace(v.Quantity))
	if err != nil || qty < 0 {
		return gateway.ItemInput{}, ErrQuantityInvalid
	}
	if v.SupplierID == 0 {
		return gateway.ItemInput{}, ErrSelectSupplier
	}
	return gateway.ItemInput{
		Name:       name,
		Price:      price,
		Quantity:   qty,
		SupplierID: v.SupplierID,
		Image:      c.image,
	}, ""
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		State:     c.state,
		Editing:   c.Editing(),
		ItemID:    c.itemID,
		Values:    c.values,
		Suppliers: append([]gateway.Supplier(nil), c.suppliers...),
		Preview:   c.preview,
		Error:     c.err,
	}
	if c.image != nil {
		v.ImageName = c.image.Filename
	}
	return v
}
