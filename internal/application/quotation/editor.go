package quotation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rental/backoffice/internal/domain/quotation"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/rental/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrDraftNotFound is returned for unknown drafts and drafts owned by another session
var ErrDraftNotFound = shared.NewDomainError("DRAFT_NOT_FOUND", "Draft not found or already closed")

// EquipmentLookup resolves catalog equipment for item defaults
type EquipmentLookup interface {
	LookupEquipment(ctx context.Context, id int64) (*quotation.EquipmentSnapshot, error)
}

// MutationResult is the draft after an insertion, with the new entity's handle
type MutationResult struct {
	Handle string         `json:"handle"`
	Draft  *DraftResponse `json:"draft"`
}

type draftEntry struct {
	owner uuid.UUID
	mu    sync.Mutex
	draft *quotation.Draft
	// closed is written without holding mu. A session reset can fire from
	// inside Submit while mu is held.
	closed atomic.Bool
}

// open returns the draft, or nil once the entry has been closed. Callers hold mu.
func (en *draftEntry) open() *quotation.Draft {
	if en.closed.Load() {
		return nil
	}
	return en.draft
}

// Editor holds the drafts being edited by each client session. Operations on
// one draft are serialized; different drafts proceed independently.
type Editor struct {
	repo    quotation.Repository
	lookup  EquipmentLookup
	numbers *quotation.NumberGenerator
	now     func() time.Time
	logger  *zap.Logger
	metrics *telemetry.BusinessMetrics

	mu     sync.Mutex
	drafts map[uuid.UUID]*draftEntry
}

// NewEditor creates a draft editor
func NewEditor(repo quotation.Repository, lookup EquipmentLookup, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		repo:    repo,
		lookup:  lookup,
		numbers: quotation.NewNumberGenerator(),
		now:     time.Now,
		logger:  logger,
		drafts:  make(map[uuid.UUID]*draftEntry),
	}
}

// SetBusinessMetrics sets the business metrics collector
func (e *Editor) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	e.metrics = bm
}

// Create starts a new quotation draft for the session
func (e *Editor) Create(ctx context.Context, owner uuid.UUID) (*DraftResponse, error) {
	d := quotation.NewDraft(e.numbers.Next(), e.now())
	e.track(owner, d)
	e.logger.Debug("Draft created",
		zap.String("session_id", owner.String()),
		zap.String("draft_id", d.ID.String()),
		zap.String("quotation_number", d.Header.QuotationNumber))
	return ToDraftResponse(d), nil
}

// Open loads an existing quotation into a new draft for editing
func (e *Editor) Open(ctx context.Context, owner uuid.UUID, quotationID int64) (*DraftResponse, error) {
	q, err := e.repo.Get(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	d, repairs := quotation.FromQuotation(*q)
	for _, r := range repairs {
		e.logger.Warn("Saved item value out of range, using default",
			zap.Int64("quotation_id", quotationID),
			zap.Int64("item_id", r.ItemID),
			zap.String("item_name", r.ItemName),
			zap.String("field", r.Field),
			zap.Int("stored", r.Stored),
			zap.Int("used", r.Used))
	}
	e.track(owner, d)
	e.logger.Debug("Draft opened from quotation",
		zap.String("session_id", owner.String()),
		zap.String("draft_id", d.ID.String()),
		zap.Int64("quotation_id", quotationID))
	return ToDraftResponse(d), nil
}

func (e *Editor) track(owner uuid.UUID, d *quotation.Draft) {
	e.mu.Lock()
	e.drafts[d.ID] = &draftEntry{owner: owner, draft: d}
	e.mu.Unlock()
}

func (e *Editor) entry(owner, id uuid.UUID) (*draftEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.drafts[id]
	if !ok || entry.owner != owner {
		return nil, ErrDraftNotFound
	}
	return entry, nil
}

// with runs fn on the draft while holding its lock and returns the updated view
func (e *Editor) with(owner, id uuid.UUID, fn func(d *quotation.Draft) error) (*DraftResponse, error) {
	entry, err := e.entry(owner, id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	d := entry.open()
	if d == nil {
		return nil, ErrDraftNotFound
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	return ToDraftResponse(d), nil
}

func (e *Editor) insert(owner, id uuid.UUID, fn func(d *quotation.Draft) (quotation.Handle, error)) (*MutationResult, error) {
	var h quotation.Handle
	view, err := e.with(owner, id, func(d *quotation.Draft) error {
		var err error
		h, err = fn(d)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Handle: h.String(), Draft: view}, nil
}

// Get returns the current view of a draft
func (e *Editor) Get(owner, id uuid.UUID) (*DraftResponse, error) {
	return e.with(owner, id, func(*quotation.Draft) error { return nil })
}

// Discard closes a draft without saving it
func (e *Editor) Discard(owner, id uuid.UUID) error {
	entry, err := e.entry(owner, id)
	if err != nil {
		return err
	}
	entry.closed.Store(true)
	e.forget(id)
	return nil
}

func (e *Editor) forget(id uuid.UUID) {
	e.mu.Lock()
	delete(e.drafts, id)
	e.mu.Unlock()
}

// SetHeader replaces the document-level fields
func (e *Editor) SetHeader(owner, id uuid.UUID, in quotation.HeaderInput) (*DraftResponse, error) {
	return e.with(owner, id, func(d *quotation.Draft) error { return d.SetHeader(in) })
}

// SetRates sets the tax and discount percentages
func (e *Editor) SetRates(owner, id uuid.UUID, in quotation.RatesInput) (*DraftResponse, error) {
	return e.with(owner, id, func(d *quotation.Draft) error { return d.SetRates(in) })
}

// AddSection appends a section and selects it
func (e *Editor) AddSection(owner, id uuid.UUID, in quotation.AddSectionInput) (*MutationResult, error) {
	return e.insert(owner, id, func(d *quotation.Draft) (quotation.Handle, error) { return d.AddSection(in) })
}

// RemoveSection removes a section with its groups and items
func (e *Editor) RemoveSection(owner, id uuid.UUID, h quotation.Handle) (*DraftResponse, error) {
	return e.with(owner, id, func(d *quotation.Draft) error { return d.RemoveSection(h) })
}

// AddGroup appends a group to the active section and selects it
func (e *Editor) AddGroup(owner, id uuid.UUID, in quotation.AddGroupInput) (*MutationResult, error) {
	return e.insert(owner, id, func(d *quotation.Draft) (quotation.Handle, error) { return d.AddGroup(in) })
}

// RemoveGroup removes a group with its items
func (e *Editor) RemoveGroup(owner, id uuid.UUID, h quotation.Handle) (*DraftResponse, error) {
	return e.with(owner, id, func(d *quotation.Draft) error { return d.RemoveGroup(h) })
}

// AddItem appends an item to the active group, or standalone when no group
// is active. A referenced equipment that the catalog cannot resolve adds no
// defaults; the item then needs an explicit name.
func (e *Editor) AddItem(ctx context.Context, owner, id uuid.UUID, in quotation.AddItemInput) (*MutationResult, error) {
	if _, err := e.entry(owner, id); err != nil {
		return nil, err
	}
	var eq *quotation.EquipmentSnapshot
	if in.EquipmentID != nil && e.lookup != nil {
		snap, err := e.lookup.LookupEquipment(ctx, *in.EquipmentID)
		if err != nil {
			e.logger.Debug("Equipment lookup failed, adding item without catalog defaults",
				zap.Int64("equipment_id", *in.EquipmentID), zap.Error(err))
		} else {
			eq = snap
		}
	}
	return e.insert(owner, id, func(d *quotation.Draft) (quotation.Handle, error) { return d.AddItem(in, eq) })
}

// RemoveItem removes a single item
func (e *Editor) RemoveItem(owner, id uuid.UUID, h quotation.Handle) (*DraftResponse, error) {
	return e.with(owner, id, func(d *quotation.Draft) error { return d.RemoveItem(h) })
}

// Select sets the active section and group
func (e *Editor) Select(owner, id uuid.UUID, section, group quotation.Handle) (*DraftResponse, error) {
	return e.with(owner, id, func(d *quotation.Draft) error { return d.Select(section, group) })
}

// Submit validates the draft locally, then creates or updates the quotation on
// the backend. On success the draft is closed and the server ids are returned.
// On failure the draft stays open and unchanged.
func (e *Editor) Submit(ctx context.Context, owner, id uuid.UUID) (*SubmitResult, error) {
	entry, err := e.entry(owner, id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	d := entry.open()
	if d == nil {
		return nil, ErrDraftNotFound
	}

	sub, err := d.Submission()
	if err != nil {
		return nil, err
	}

	created := d.IsNew()
	var saved *quotation.Quotation
	if created {
		saved, err = e.repo.Create(ctx, sub)
	} else {
		saved, err = e.repo.Update(ctx, d.QuotationID, sub)
	}
	if err != nil {
		e.logger.Warn("Quotation submit failed",
			zap.String("draft_id", id.String()),
			zap.String("quotation_number", sub.QuotationNumber),
			zap.Error(err))
		return nil, err
	}

	ids := d.AssignServerIDs(*saved)
	entry.closed.Store(true)
	e.forget(id)

	if e.metrics != nil {
		e.metrics.RecordQuotationSaved(ctx, created, saved.Status.String(), sub.Total.Decimal)
	}
	e.logger.Info("Quotation saved",
		zap.Int64("quotation_id", saved.ID),
		zap.String("quotation_number", saved.QuotationNumber),
		zap.Bool("created", created))
	return &SubmitResult{Quotation: saved, Created: created, IDs: ids}, nil
}

// DropSession closes every draft owned by the session. It never waits on a
// draft's lock, so it is safe to call from a backend unauthorized hook that
// fires while one of the session's drafts is being submitted.
func (e *Editor) DropSession(owner uuid.UUID) int {
	e.mu.Lock()
	dropped := 0
	for id, entry := range e.drafts {
		if entry.owner == owner {
			entry.closed.Store(true)
			delete(e.drafts, id)
			dropped++
		}
	}
	e.mu.Unlock()

	if dropped > 0 {
		e.logger.Debug("Dropped session drafts",
			zap.String("session_id", owner.String()),
			zap.Int("count", dropped))
	}
	return dropped
}

// OpenDrafts returns the number of drafts being edited
func (e *Editor) OpenDrafts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.drafts)
}
