package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/mymind/internal/client/client"
	"github.com/dmitrijs2005/mymind/internal/client/linkmeta"
	"github.com/dmitrijs2005/mymind/internal/client/models"
	"github.com/dmitrijs2005/mymind/internal/client/repositories/pending"
	"github.com/dmitrijs2005/mymind/internal/client/store"
	"github.com/dmitrijs2005/mymind/internal/client/views"
	"github.com/dmitrijs2005/mymind/internal/common"
	"github.com/dmitrijs2005/mymind/internal/logging"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// OwnerSource resolves the signed-in owner. Empty means nobody.
type OwnerSource interface {
	Owner() string
}

// ItemService is the only writer of the item store. Each mutation is applied
// locally first; the matching remote write goes through the dispatcher and a
// failure there never rolls the local change back.
type ItemService interface {
	// Reload replaces the store with the remote snapshot and, when a
	// journal is configured, replays writes that failed earlier.
	Reload(ctx context.Context) error
	Add(ctx context.Context, url string) (models.Item, error)
	Update(ctx context.Context, id string, patch models.Patch) (models.Item, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	PermanentDelete(ctx context.Context, id string) error
	EmptyBin(ctx context.Context) (int, error)
	MarkReviewed(ctx context.Context, id string) error
	Views(f views.Filter) views.Views
	Wait()
}

type ItemOption func(*itemService)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ItemOption {
	return func(s *itemService) { s.now = now }
}

// WithBackoff sets the retry policy used when replaying the journal.
func WithBackoff(b func() retry.Backoff) ItemOption {
	return func(s *itemService) { s.backoff = b }
}

type itemService struct {
	client     client.Client
	store      *store.Store
	owners     OwnerSource
	journal    pending.Repository
	dispatcher Dispatcher
	logger     logging.Logger
	now        func() time.Time
	backoff    func() retry.Backoff

	mu    sync.Mutex
	dirty map[string]bool
}

// NewItemService wires the pipeline. journal may be nil, in which case
// failed remote writes are only logged.
func NewItemService(c client.Client, st *store.Store, owners OwnerSource, journal pending.Repository,
	d Dispatcher, logger logging.Logger, opts ...ItemOption) ItemService {
	s := &itemService{
		client:     c,
		store:      st,
		owners:     owners,
		journal:    journal,
		dispatcher: d,
		logger:     logger.With("module", "items"),
		now:        time.Now,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))
		},
		dirty: make(map[string]bool),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// owner returns the signed-in owner if the store was loaded for them.
func (s *itemService) owner() (string, bool) {
	o := s.owners.Owner()
	return o, o != "" && o == s.store.Owner()
}

func (s *itemService) Views(f views.Filter) views.Views {
	return views.Derive(s.store.Snapshot(), f, s.now())
}

func (s *itemService) Wait() {
	s.dispatcher.Wait()
}

func (s *itemService) Reload(ctx context.Context) error {
	owner := s.owners.Owner()
	if owner == "" {
		s.store.Reset()
		return nil
	}

	items, err := s.client.FetchAll(ctx, owner)
	if err != nil {
		s.store.Load(owner, nil)
		s.logger.Error(ctx, "initial fetch failed", "error", err)
		return fmt.Errorf("fetch items: %w", err)
	}
	s.store.Load(owner, items)
	s.logger.Debug(ctx, "items loaded", "count", len(items))

	if s.journal != nil {
		s.reconcile(ctx, owner)
	}
	return nil
}

func (s *itemService) Add(ctx context.Context, rawURL string) (models.Item, error) {
	owner, ok := s.owner()
	if !ok {
		return models.Item{}, ErrNoOwner
	}
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return models.Item{}, ErrEmptyURL
	}
	if !linkmeta.IsWebURL(url) {
		return models.Item{}, ErrInvalidURL
	}

	platform, thumbnail := linkmeta.Describe(url)
	item := models.Item{
		ID:        models.NewProvisionalID(uuid.NewString()),
		Owner:     owner,
		URL:       url,
		Title:     models.DefaultTitle,
		Thumbnail: thumbnail,
		Platform:  platform,
		Category:  models.InboxCategory,
		Tags:      []string{},
		CreatedAt: s.now().UTC(),
	}
	s.store.Put(item)

	id, err := s.client.Insert(ctx, item)
	if err != nil {
		s.logger.Error(ctx, "add failed", "url", url, "error", err)
		if s.journal != nil {
			s.journalState(ctx, owner, item.ID)
		} else {
			s.store.Remove(item.ID)
			s.takeDirty(item.ID)
		}
		return item, &AddError{URL: url, Err: err}
	}

	s.settle(ctx, owner, item.ID, id)
	if saved, ok := s.store.Get(id); ok {
		return saved, nil
	}
	item.ID = id
	return item, nil
}

// settle swaps a provisional id for the one the server assigned and pushes
// anything that happened to the record while the insert was in flight.
func (s *itemService) settle(ctx context.Context, owner, provisional, id string) {
	dirty := s.takeDirty(provisional)
	s.forget(ctx, provisional)

	if !s.store.Rekey(provisional, id) {
		if _, still := s.store.Get(provisional); still {
			// the server id is already known locally
			s.store.Remove(provisional)
			return
		}
		_ = s.dispatch(ctx, "delete", owner, []string{id}, func(ctx context.Context) error {
			return s.client.Delete(ctx, owner, id)
		})
		return
	}

	if dirty {
		item, _ := s.store.Get(id)
		_ = s.dispatch(ctx, "update", owner, []string{id}, func(ctx context.Context) error {
			return s.client.Update(ctx, owner, id, models.FullPatch(item))
		})
	}
}

func (s *itemService) Update(ctx context.Context, id string, patch models.Patch) (models.Item, error) {
	owner, ok := s.owner()
	if !ok {
		return models.Item{}, nil
	}
	if patch.IsEmpty() {
		item, found := s.store.Get(id)
		if !found {
			return models.Item{}, ErrUnknownItem
		}
		return item, nil
	}
	item, found := s.store.Apply(id, patch)
	if !found {
		return models.Item{}, ErrUnknownItem
	}
	return item, s.pushPatch(ctx, "update", owner, id, patch)
}

// SoftDelete moves an active item to the trash. An item already there keeps
// its original deleted_at so its retention window is not restarted.
func (s *itemService) SoftDelete(ctx context.Context, id string) error {
	if _, ok := s.owner(); !ok {
		return nil
	}
	item, found := s.store.Get(id)
	if !found {
		return ErrUnknownItem
	}
	if item.IsDeleted() {
		return nil
	}
	return s.mutate(ctx, "soft_delete", id, models.Patch{DeletedAt: models.SetTime(s.now().UTC())})
}

func (s *itemService) MarkReviewed(ctx context.Context, id string) error {
	return s.mutate(ctx, "mark_reviewed", id, models.Patch{ReviewedAt: models.SetTime(s.now().UTC())})
}

func (s *itemService) Restore(ctx context.Context, id string) error {
	if _, ok := s.owner(); !ok {
		return nil
	}
	item, found := s.store.Get(id)
	if !found {
		return ErrUnknownItem
	}
	if !item.IsDeleted() {
		return ErrNotInTrash
	}
	if !views.InRetention(item, s.now()) {
		return ErrRetentionExpired
	}
	return s.mutate(ctx, "restore", id, models.Patch{DeletedAt: models.ClearTime()})
}

func (s *itemService) mutate(ctx context.Context, op, id string, patch models.Patch) error {
	owner, ok := s.owner()
	if !ok {
		return nil
	}
	if _, found := s.store.Apply(id, patch); !found {
		return ErrUnknownItem
	}
	return s.pushPatch(ctx, op, owner, id, patch)
}

func (s *itemService) pushPatch(ctx context.Context, op, owner, id string, patch models.Patch) error {
	if models.IsProvisional(id) {
		// nothing to address remotely yet; settle or the journal will carry it
		s.markDirty(id)
		s.journalState(ctx, owner, id)
		return nil
	}
	return s.dispatch(ctx, op, owner, []string{id}, func(ctx context.Context) error {
		return s.client.Update(ctx, owner, id, patch)
	})
}

func (s *itemService) PermanentDelete(ctx context.Context, id string) error {
	owner, ok := s.owner()
	if !ok {
		return nil
	}
	if !s.store.Remove(id) {
		return ErrUnknownItem
	}
	if models.IsProvisional(id) {
		s.markDirty(id)
		s.forget(ctx, id)
		return nil
	}
	return s.dispatch(ctx, "delete", owner, []string{id}, func(ctx context.Context) error {
		return s.client.Delete(ctx, owner, id)
	})
}

// EmptyBin drops every soft-deleted item, including ones already past the
// retention window.
func (s *itemService) EmptyBin(ctx context.Context) (int, error) {
	owner, ok := s.owner()
	if !ok {
		return 0, nil
	}

	trashed := views.Deleted(s.store.Snapshot())
	ids := make([]string, 0, len(trashed))
	for _, it := range trashed {
		ids = append(ids, it.ID)
	}
	n := s.store.RemoveMany(ids)

	remote := make([]string, 0, len(ids))
	for _, id := range ids {
		if models.IsProvisional(id) {
			s.markDirty(id)
			s.forget(ctx, id)
			continue
		}
		remote = append(remote, id)
	}
	if len(remote) == 0 {
		return n, nil
	}
	return n, s.dispatch(ctx, "delete_many", owner, remote, func(ctx context.Context) error {
		return s.client.DeleteMany(ctx, owner, remote)
	})
}

// dispatch runs call through the dispatcher; on failure it logs and
// journals the current local state of every affected id.
func (s *itemService) dispatch(ctx context.Context, op, owner string, ids []string, call func(context.Context) error) error {
	return s.dispatcher.Dispatch(ctx, op, func(ctx context.Context) error {
		err := call(ctx)
		if err == nil {
			return nil
		}
		s.logger.Warn(ctx, "remote write failed", "op", op, "ids", ids, "error", err)
		for _, id := range ids {
			s.journalState(ctx, owner, id)
		}
		return fmt.Errorf("%s: %w", op, err)
	})
}

// journalState records what id looks like locally right now: the full
// record, or a tombstone when it is gone.
func (s *itemService) journalState(ctx context.Context, owner, id string) {
	if s.journal == nil {
		return
	}
	w := models.PendingWrite{ID: id, Owner: owner, Op: models.PendingDelete, QueuedAt: s.now()}
	if item, ok := s.store.Get(id); ok {
		w.Op = models.PendingUpsert
		w.Item = &item
	}
	if err := s.journal.Put(ctx, w); err != nil {
		s.logger.Warn(ctx, "journal write failed", "id", id, "error", err)
	}
}

func (s *itemService) forget(ctx context.Context, id string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Delete(ctx, id); err != nil {
		s.logger.Warn(ctx, "journal delete failed", "id", id, "error", err)
	}
}

func (s *itemService) markDirty(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty[id] = true
}

func (s *itemService) takeDirty(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.dirty[id]
	delete(s.dirty, id)
	return d
}

// reconcile lays journaled writes over the fresh snapshot, so local intent
// wins, then pushes them again. Entries that still fail stay journaled.
func (s *itemService) reconcile(ctx context.Context, owner string) {
	writes, err := s.journal.List(ctx, owner)
	if err != nil {
		s.logger.Warn(ctx, "journal read failed", "error", err)
		return
	}
	if len(writes) == 0 {
		return
	}

	for _, w := range writes {
		switch w.Op {
		case models.PendingUpsert:
			if w.Item != nil {
				s.store.Put(*w.Item)
			}
		case models.PendingDelete:
			s.store.Remove(w.ID)
		}
	}

	pushed := 0
	for _, w := range writes {
		err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
			err := s.replay(ctx, owner, w)
			if errors.Is(err, client.ErrUnavailable) {
				return retry.RetryableError(err)
			}
			return err
		})
		if errors.Is(err, common.ErrorValidation) {
			// the server will never accept it; retrying would keep it around forever
			s.logger.Warn(ctx, "pending write rejected, dropping it", "id", w.ID, "op", w.Op, "error", err)
			if models.IsProvisional(w.ID) {
				s.store.Remove(w.ID)
			}
			s.takeDirty(w.ID)
			s.forget(ctx, w.ID)
			continue
		}
		if err != nil {
			s.logger.Warn(ctx, "pending write still failing", "id", w.ID, "op", w.Op, "error", err)
			continue
		}
		s.forget(ctx, w.ID)
		pushed++
	}
	s.logger.Info(ctx, "pending writes replayed", "pushed", pushed, "total", len(writes))
}

func (s *itemService) replay(ctx context.Context, owner string, w models.PendingWrite) error {
	if w.Op == models.PendingDelete {
		if models.IsProvisional(w.ID) {
			return nil
		}
		err := s.client.Delete(ctx, owner, w.ID)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	if w.Item == nil {
		return nil
	}
	if models.IsProvisional(w.ID) {
		id, err := s.client.Insert(ctx, *w.Item)
		if err != nil {
			return err
		}
		if s.store.Rekey(w.ID, id) {
			return nil
		}
		// an earlier attempt committed and the row came back with the
		// snapshot; fold the journaled state into it
		s.store.Remove(w.ID)
		item := *w.Item
		item.ID = id
		s.store.Put(item)
		return s.client.Update(ctx, owner, id, models.FullPatch(item))
	}

	err := s.client.Update(ctx, owner, w.ID, models.FullPatch(*w.Item))
	if errors.Is(err, common.ErrorNotFound) {
		// deleted elsewhere; that removal is final
		s.store.Remove(w.ID)
		return nil
	}
	return err
}
