// Package cart implements the shopping cart: line items keyed by product and
// variant, derived totals, and persistence of the whole cart on every change.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultStorageKey is the key the cart is persisted under.
const DefaultStorageKey = "swift-shop-cart"

// Storage is a key-value store holding the serialised cart.
type Storage interface {
	// Get returns the stored value; found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Notifier receives user-facing messages about cart changes.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Mutation actions reported on the cart_mutations counter.
const (
	actionAdd    = "add"
	actionUpdate = "update"
	actionRemove = "remove"
	actionClear  = "clear"
)

// Cart is the cart aggregate. It is safe for concurrent use.
type Cart struct {
	mu         sync.Mutex
	items      []LineItem
	drawerOpen bool

	storage   Storage
	key       string
	notifier  Notifier
	logger    *slog.Logger
	meters    metric.MeterProvider
	mutations metric.Int64Counter
}

// Option configures a Cart.
type Option func(*Cart)

// WithStorageKey overrides DefaultStorageKey.
func WithStorageKey(key string) Option {
	return func(c *Cart) {
		if key != "" {
			c.key = key
		}
	}
}

// WithMeterProvider records cart metrics on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Cart) {
		if mp != nil {
			c.meters = mp
		}
	}
}

// New creates a cart and hydrates it from storage.
// Unreadable stored data yields an empty cart; the problem is logged, not returned.
func New(ctx context.Context, storage Storage, notifier Notifier, logger *slog.Logger, opts ...Option) *Cart {
	c := &Cart{
		items:    []LineItem{},
		storage:  storage,
		key:      DefaultStorageKey,
		notifier: notifier,
		logger:   logger,
		meters:   otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(c)
	}
	mutations, err := c.meters.Meter("storefront-cart").Int64Counter("cart_mutations",
		metric.WithDescription("Total number of cart mutations"))
	if err != nil {
		panic(fmt.Sprintf("failed to create cart_mutations counter: %v", err))
	}
	c.mutations = mutations
	c.hydrate(ctx)
	return c
}

func (c *Cart) hydrate(ctx context.Context) {
	raw, found, err := c.storage.Get(ctx, c.key)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to read stored cart, starting empty", "key", c.key, "error", err)
		return
	}
	if !found || raw == "" {
		return
	}
	items, err := Decode([]byte(raw))
	if err != nil {
		c.logger.WarnContext(ctx, "Stored cart is unreadable, starting empty", "key", c.key, "error", err)
		return
	}
	c.items = items
	c.logger.DebugContext(ctx, "Cart hydrated", "key", c.key, "items", len(items))
}

// Decode parses a serialised cart. Entries with a non-positive quantity are
// dropped and entries sharing an identity are merged.
func Decode(data []byte) ([]LineItem, error) {
	var stored []LineItem
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", perrors.ErrStorageCorrupt, err)
	}
	items := make([]LineItem, 0, len(stored))
	for _, it := range stored {
		if it.Quantity <= 0 {
			continue
		}
		id := it.Identity()
		it.Size, it.Color = id.Size, id.Color
		if i := indexOf(items, id); i >= 0 {
			items[i].Quantity += it.Quantity
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// Encode serialises line items the way they are persisted.
func Encode(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

func indexOf(items []LineItem, id Identity) int {
	return slices.IndexFunc(items, func(it LineItem) bool { return it.Identity() == id })
}

// persist writes the whole cart. Must be called with c.mu held.
// The write ignores cancellation of ctx: once the in-memory cart has changed
// the change must reach storage even if the caller has gone away.
// A failed write is logged; the in-memory cart stays authoritative.
func (c *Cart) persist(ctx context.Context) {
	data, err := Encode(c.items)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to encode cart", "error", err)
		return
	}
	if err := c.storage.Set(context.WithoutCancel(ctx), c.key, string(data)); err != nil {
		c.logger.ErrorContext(ctx, "Failed to persist cart", "key", c.key, "error", err)
	}
}

func (c *Cart) notify(ctx context.Context, message string) {
	if c.notifier == nil || message == "" {
		return
	}
	c.notifier.Notify(ctx, message)
}

func (c *Cart) record(ctx context.Context, action string) {
	c.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

func describe(title string, v Variant) string {
	if label := v.Label(); label != "" {
		return fmt.Sprintf("%s (%s)", title, label)
	}
	return title
}

// AddToCart adds qty units of the selection. An existing line item with the
// same identity has its quantity increased; otherwise a new line item is
// appended. A non-positive qty counts as 1.
func (c *Cart) AddToCart(ctx context.Context, sel ProductSelection, qty int) LineItem {
	if qty <= 0 {
		qty = 1
	}
	id := sel.Identity()

	c.mu.Lock()
	var (
		item    LineItem
		message string
	)
	if i := indexOf(c.items, id); i >= 0 {
		c.items[i].Quantity += qty
		item = c.items[i]
		message = fmt.Sprintf("Updated %s quantity in cart!", describe(sel.Product.Title, sel.Variant))
	} else {
		item = LineItem{
			ProductID: id.ProductID,
			Size:      id.Size,
			Color:     id.Color,
			Quantity:  qty,
			Product:   sel.Snapshot(),
		}
		c.items = append(c.items, item)
		message = fmt.Sprintf("%s added to cart!", describe(item.Product.Title, sel.Variant))
	}
	c.persist(ctx)
	c.mu.Unlock()

	c.record(ctx, actionAdd)
	c.notify(ctx, message)
	return item
}

// UpdateQuantity sets the quantity of a line item. A non-positive qty removes
// it. It reports whether a line item was changed.
func (c *Cart) UpdateQuantity(ctx context.Context, id Identity, qty int) bool {
	if qty <= 0 {
		return c.RemoveFromCart(ctx, id)
	}
	id = NewIdentity(id.ProductID, id.Size, id.Color)

	c.mu.Lock()
	i := indexOf(c.items, id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.items[i].Quantity = qty
	c.persist(ctx)
	c.mu.Unlock()

	c.record(ctx, actionUpdate)
	return true
}

// RemoveFromCart deletes the line item with the given identity. Removing an
// absent item changes nothing and sends no notification.
func (c *Cart) RemoveFromCart(ctx context.Context, id Identity) bool {
	id = NewIdentity(id.ProductID, id.Size, id.Color)

	c.mu.Lock()
	i := indexOf(c.items, id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	removed := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	c.persist(ctx)
	c.mu.Unlock()

	c.record(ctx, actionRemove)
	c.notify(ctx, fmt.Sprintf("%s removed from cart", describe(removed.Product.Title, removed.variant())))
	return true
}

// ClearCart empties the cart.
func (c *Cart) ClearCart(ctx context.Context) {
	c.mu.Lock()
	c.items = []LineItem{}
	c.persist(ctx)
	c.mu.Unlock()

	c.record(ctx, actionClear)
	c.notify(ctx, "Cart cleared!")
}

// Total is the sum of snapshot price times quantity over all line items.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemCount is the sum of all quantities.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, it := range c.items {
		count += it.Quantity
	}
	return count
}

// Items returns the line items in insertion order.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Cart) OpenDrawer() {
	c.mu.Lock()
	c.drawerOpen = true
	c.mu.Unlock()
}

func (c *Cart) CloseDrawer() {
	c.mu.Lock()
	c.drawerOpen = false
	c.mu.Unlock()
}

// ToggleDrawer flips the drawer and returns the new state.
func (c *Cart) ToggleDrawer() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawerOpen = !c.drawerOpen
	return c.drawerOpen
}

func (c *Cart) IsDrawerOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawerOpen
}
