// Package inlineedit holds the edit/save/cancel lifecycle of the editable
// price and quantity cells on the supplier dashboard.
package inlineedit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

// Validation messages shown under the edited cell.
const (
	ErrNotANumber = "Value must be a number."
	ErrNegative   = "Value cannot be negative."
)

// Field is an editable column.
type Field int

const (
	FieldPrice Field = iota + 1
	FieldQuantity
)

func ParseField(s string) (Field, error) {
	switch s {
	case "price":
		return FieldPrice, nil
	case "quantity":
		return FieldQuantity, nil
	default:
		return 0, fmt.Errorf("field %q is not editable", s)
	}
}

func (f Field) String() string {
	switch f {
	case FieldPrice:
		return "price"
	case FieldQuantity:
		return "quantity"
	default:
		return ""
	}
}

// Row is the committed state of a table row, as last shown to the user.
type Row struct {
	ID       int
	Price    float64
	Quantity int
}

func (r Row) value(f Field) string {
	if f == FieldPrice {
		return strconv.FormatFloat(r.Price, 'f', -1, 64)
	}
	return strconv.Itoa(r.Quantity)
}

// State is a snapshot of the machine. The zero value is Idle.
type State struct {
	Editing bool
	Row     Row
	Field   Field
	Draft   string
	Error   string
}

// IsEditing reports whether the given cell is the one being edited.
func (s State) IsEditing(rowID int, f Field) bool {
	return s.Editing && s.Row.ID == rowID && s.Field == f
}

// Outcome describes what Save did.
type Outcome int

const (
	// NotEditing: Save was called while Idle.
	NotEditing Outcome = iota
	// Invalid: the draft failed validation; nothing was sent.
	Invalid
	// Saved: the update succeeded and the machine is Idle.
	Saved
	// Failed: the update was rejected; the cell stays in edit mode.
	Failed
)

// Updater sends the combined price/quantity update.
type Updater interface {
	UpdateSupplierItem(ctx context.Context, id int, u gateway.SupplierUpdate) (*gateway.Item, error)
}

// Machine allows at most one cell in edit mode.
type Machine struct {
	mu    sync.Mutex
	state State
	// gen changes on every Begin/Cancel so an in-flight save can tell
	// whether the edit it started from is still the current one.
	gen uint64
}

func New() *Machine { return &Machine{} }

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Begin puts (row, field) into edit mode with the committed value as draft.
// Any other cell being edited is cancelled and its draft discarded.
func (m *Machine) Begin(row Row, f Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.state = State{Editing: true, Row: row, Field: f, Draft: row.value(f)}
}

// SetDraft replaces the draft without validating it. It reports false when
// no cell is being edited.
func (m *Machine) SetDraft(v string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Editing {
		return false
	}
	m.state.Draft = v
	return true
}

// Cancel returns to Idle. Calling it while Idle does nothing.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.state = State{}
}

// Save validates the draft and, if it is valid, sends both fields to u: the
// edited one with the new value, the other with its committed value. On
// success the machine returns to Idle. On failure it stays in edit mode and
// the error is returned for display.
func (m *Machine) Save(ctx context.Context, u Updater) (Outcome, error) {
	m.mu.Lock()
	if !m.state.Editing {
		m.mu.Unlock()
		return NotEditing, nil
	}
	value, msg := validate(m.state.Draft)
	if msg != "" {
		m.state.Error = msg
		m.mu.Unlock()
		return Invalid, nil
	}
	m.state.Error = ""
	st, gen := m.state, m.gen
	m.mu.Unlock()

	update := gateway.SupplierUpdate{Price: st.Row.Price, Quantity: float64(st.Row.Quantity)}
	switch st.Field {
	case FieldPrice:
		update.Price = value
	case FieldQuantity:
		update.Quantity = value
	}

	if _, err := u.UpdateSupplierItem(ctx, st.Row.ID, update); err != nil {
		return Failed, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another cell may have been opened while the request was in flight.
	if m.gen == gen {
		m.gen++
		m.state = State{}
	}
	return Saved, nil
}

func validate(draft string) (float64, string) {
	trimmed := strings.TrimSpace(draft)
	if trimmed == "" {
		return 0, ErrNotANumber
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotANumber
	}
	if v < 0 {
		return 0, ErrNegative
	}
	return v, ""
}
