package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/iyhunko/product-list-sync/internal/metrics"
	"github.com/iyhunko/product-list-sync/internal/model"
	"github.com/iyhunko/product-list-sync/internal/sqs"
	"github.com/iyhunko/product-list-sync/internal/validation"
)

// CreatedAtLayout renders creation timestamps as ISO-8601 in UTC with millisecond precision.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

// ProductAPI is the remote product collection the controller mirrors.
type ProductAPI interface {
	List(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, payload model.CreatePayload) (model.Product, error)
	Delete(ctx context.Context, id model.ProductID) error
}

// Notifier is told about mutations this controller made to the remote collection.
type Notifier interface {
	PublishProductMessage(ctx context.Context, msg sqs.ProductMessage) error
}

// Option configures a ProductListController.
type Option func(*ProductListController)

// WithNotifier publishes a change message after every successful create or delete.
func WithNotifier(n Notifier) Option {
	return func(c *ProductListController) {
		c.notifier = n
	}
}

// WithClock replaces the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *ProductListController) {
		c.now = now
	}
}

// ProductListController keeps a local mirror of the remote product collection
// and the state of the product creation form.
//
// The collection is never patched locally: every mutation is followed by a full reload.
// Concurrent reloads are allowed; a response is applied only when no newer reload
// has been applied already.
type ProductListController struct {
	api      ProductAPI
	notifier Notifier
	now      func() time.Time

	mu         sync.Mutex
	products   []model.Product
	inFlight   int
	nextSeq    uint64
	appliedSeq uint64
	form       model.FormState
	lastError  string
	version    uint64

	subscribers map[uint64]func(model.Snapshot)
	nextSubID   uint64
	// notifyMu keeps snapshot deliveries in version order.
	notifyMu sync.Mutex
}

// NewProductListController creates a controller over the given product API.
func NewProductListController(api ProductAPI, opts ...Option) *ProductListController {
	c := &ProductListController{
		api:         api,
		now:         time.Now,
		products:    []model.Product{},
		form:        model.FormState{Errors: model.FieldErrors{}},
		subscribers: map[uint64]func(model.Snapshot){},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *ProductListController) Snapshot() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs synchronously and must not call back into the controller.
// The returned function removes the subscription.
func (c *ProductListController) Subscribe(fn func(model.Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	c.nextSubID++
	id := c.nextSubID
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

// LoadAll replaces the collection with the server's current state.
// On failure the previous collection is kept and the transport error returned.
// Loading is reported while at least one reload is in flight.
func (c *ProductListController) LoadAll(ctx context.Context) error {
	var seq uint64
	c.update(func() {
		c.nextSeq++
		seq = c.nextSeq
		c.inFlight++
	})

	products, err := c.api.List(ctx)

	stale := false
	c.update(func() {
		c.inFlight--
		if seq < c.appliedSeq {
			stale = true
			return
		}
		if err != nil {
			c.lastError = err.Error()
			return
		}
		c.appliedSeq = seq
		c.products = products
		c.lastError = ""
	})

	metrics.CollectionLoads.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		slog.Error("Failed to load products", slog.Any("err", err), slog.Uint64("seq", seq))
		return err
	}
	if stale {
		metrics.StaleLoadsDiscarded.Inc()
		slog.Info("Discarded stale product reload", slog.Uint64("seq", seq))
		return nil
	}
	slog.Debug("Products loaded", slog.Int("count", len(products)), slog.Uint64("seq", seq))
	return nil
}

// DeleteProduct removes a product remotely and reloads the collection.
// A failed delete issues no reload.
func (c *ProductListController) DeleteProduct(ctx context.Context, id model.ProductID) error {
	deleted, _ := c.find(id)

	err := c.api.Delete(ctx, id)
	metrics.ProductsDeleted.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		slog.Error("Failed to delete product", slog.Any("err", err), slog.String("product_id", id.String()))
		c.update(func() { c.lastError = err.Error() })
		return err
	}

	deleted.ID = id
	c.publish(ctx, sqs.ActionDeleted, deleted)

	if err := c.LoadAll(ctx); err != nil {
		return &ResyncError{Op: "delete", Err: err}
	}
	return nil
}

// Validate checks a draft without any side effect.
func (c *ProductListController) Validate(draft model.Draft) model.FieldErrors {
	return validation.Validate(draft)
}

// CreateProduct validates the draft and, when valid, creates the product remotely,
// resets the form and reloads the collection.
// An invalid draft is stored with its errors in the form state and nothing is sent.
// A failed create leaves the form as it is so it can be resubmitted.
func (c *ProductListController) CreateProduct(ctx context.Context, draft model.Draft) error {
	errs := validation.Validate(draft)
	c.update(func() {
		c.form.Draft = draft
		c.form.Errors = errs
	})
	if !errs.Empty() {
		metrics.DraftsRejected.Inc()
		return &ValidationError{Fields: errs.Clone()}
	}

	payload := model.CreatePayload{
		Name:      strings.TrimSpace(draft.Name),
		Price:     strings.TrimSpace(draft.Price),
		Image:     strings.TrimSpace(draft.Image),
		CreatedAt: c.now().UTC().Format(CreatedAtLayout),
	}

	created, err := c.api.Create(ctx, payload)
	metrics.ProductsCreated.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		slog.Error("Failed to create product", slog.Any("err", err), slog.String("name", payload.Name))
		c.update(func() { c.lastError = err.Error() })
		return err
	}

	c.update(func() {
		c.form = model.FormState{Errors: model.FieldErrors{}}
	})

	if created.Name == "" {
		created.Name = payload.Name
		created.Price = model.Price(payload.Price)
	}
	c.publish(ctx, sqs.ActionCreated, created)

	if err := c.LoadAll(ctx); err != nil {
		return &ResyncError{Op: "create", Err: err}
	}
	return nil
}

// OpenForm opens the creation form with an empty draft.
func (c *ProductListController) OpenForm() {
	c.update(func() {
		c.form = model.FormState{Open: true, Errors: model.FieldErrors{}}
	})
}

// UpdateDraft stores the draft being edited. It does not validate.
func (c *ProductListController) UpdateDraft(draft model.Draft) {
	c.update(func() {
		c.form.Draft = draft
	})
}

// CancelForm discards the draft and closes the creation form.
func (c *ProductListController) CancelForm() {
	c.update(func() {
		c.form = model.FormState{Errors: model.FieldErrors{}}
	})
}

func (c *ProductListController) find(id model.ProductID) (model.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (c *ProductListController) publish(ctx context.Context, action string, p model.Product) {
	if c.notifier == nil {
		return
	}
	msg := sqs.ProductMessage{
		Action:    action,
		ProductID: p.ID.String(),
		Name:      p.Name,
		Price:     string(p.Price),
	}
	if err := c.notifier.PublishProductMessage(ctx, msg); err != nil {
		// Log error but don't fail the operation
		slog.Error("Failed to publish product change", slog.Any("err", err), slog.String("action", action), slog.String("product_id", msg.ProductID))
	}
}

// update applies mutate under the state lock and delivers the resulting snapshot to subscribers.
func (c *ProductListController) update(mutate func()) {
	c.mu.Lock()
	mutate()
	c.version++
	snap := c.snapshotLocked()
	subs := make([]func(model.Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, fn := range subs {
		fn(snap.Clone())
	}
}

func (c *ProductListController) snapshotLocked() model.Snapshot {
	snap := model.Snapshot{
		Products:  c.products,
		Loading:   c.inFlight > 0,
		Form:      c.form,
		LastError: c.lastError,
		Version:   c.version,
	}
	return snap.Clone()
}
