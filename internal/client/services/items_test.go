package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mymind/internal/client/client"
	"github.com/dmitrijs2005/mymind/internal/client/models"
	"github.com/dmitrijs2005/mymind/internal/client/repositories/pending"
	"github.com/dmitrijs2005/mymind/internal/client/store"
	"github.com/dmitrijs2005/mymind/internal/client/views"
	"github.com/dmitrijs2005/mymind/internal/common"
	"github.com/dmitrijs2005/mymind/internal/logging"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	svc     ItemService
	store   *store.Store
	client  *fakeClient
	clock   *clock
	journal *pending.SQLiteRepository
}

func newHarness(t *testing.T, owner string, withJournal bool, items ...models.Item) *harness {
	t.Helper()
	h := &harness{
		store:  store.New(),
		client: &fakeClient{items: items},
		clock:  &clock{now: t0},
	}

	var journal pending.Repository
	if withJournal {
		h.journal = pending.NewSQLiteRepository(setupDB(t))
		journal = h.journal
	}

	h.svc = NewItemService(h.client, h.store, staticOwner(owner), journal, InlineDispatcher{}, logging.NewDiscard(),
		WithClock(h.clock.Now),
		WithBackoff(func() retry.Backoff { return retry.WithMaxRetries(1, retry.NewConstant(time.Millisecond)) }),
	)
	require.NoError(t, h.svc.Reload(context.Background()))
	return h
}

func rec(id string, created time.Duration) models.Item {
	return models.Item{ID: id, Owner: "u1", Title: id, Category: models.InboxCategory, Tags: []string{}, CreatedAt: t0.Add(created)}
}

func ptr(t time.Time) *time.Time { return &t }

func TestReload_LoadsSnapshot(t *testing.T) {
	h := newHarness(t, "u1", false, rec("b", time.Hour), rec("a", 0))
	require.Equal(t, 2, h.store.Len())
	require.Equal(t, "u1", h.store.Owner())
}

func TestReload_NoOwnerResetsStore(t *testing.T) {
	h := newHarness(t, "", false, rec("a", 0))
	require.Zero(t, h.store.Len())
	require.Empty(t, h.store.Owner())
}

func TestReload_FetchFailureLeavesStoreEmpty(t *testing.T) {
	h := newHarness(t, "u1", false, rec("a", 0))
	h.client.fetchErr = client.ErrUnavailable

	err := h.svc.Reload(context.Background())
	require.ErrorIs(t, err, client.ErrUnavailable)
	require.Zero(t, h.store.Len())
	require.Empty(t, h.svc.Views(views.Filter{}).Feed)
}

func TestAdd_CreatesInboxRecordWithServerID(t *testing.T) {
	h := newHarness(t, "u1", false, rec("old", -time.Hour))
	h.client.insertIDs = []string{"srv-1"}

	item, err := h.svc.Add(context.Background(), "  https://youtu.be/dQw4w9WgXcQ ")
	require.NoError(t, err)
	require.Equal(t, "srv-1", item.ID)
	require.Equal(t, "u1", item.Owner)
	require.Equal(t, "https://youtu.be/dQw4w9WgXcQ", item.URL)
	require.Equal(t, models.DefaultTitle, item.Title)
	require.Equal(t, models.InboxCategory, item.Category)
	require.Equal(t, models.PlatformYouTube, item.Platform)
	require.Contains(t, item.Thumbnail, "dQw4w9WgXcQ")
	require.Empty(t, item.Tags)
	require.Nil(t, item.DeletedAt)
	require.Nil(t, item.ReviewedAt)
	require.True(t, item.CreatedAt.Equal(t0))

	snap := h.store.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, "srv-1", snap[0].ID)

	require.Len(t, h.client.inserted, 1)
	require.True(t, models.IsProvisional(h.client.inserted[0].ID))
}

func TestAdd_NoOwnerIsNoop(t *testing.T) {
	h := newHarness(t, "", false)

	_, err := h.svc.Add(context.Background(), "https://example.com")
	require.ErrorIs(t, err, ErrNoOwner)
	require.Empty(t, h.client.inserted)
	require.Zero(t, h.store.Len())
}

func TestAdd_EmptyURL(t *testing.T) {
	h := newHarness(t, "u1", false)
	_, err := h.svc.Add(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyURL)
}

func TestAdd_FailureSurfacesURLAndDropsProvisional(t *testing.T) {
	h := newHarness(t, "u1", false)
	h.client.insertErr = client.ErrUnavailable

	_, err := h.svc.Add(context.Background(), "https://example.com/paris")

	var addErr *AddError
	require.ErrorAs(t, err, &addErr)
	require.Equal(t, "https://example.com/paris", addErr.URL)
	require.ErrorIs(t, err, client.ErrUnavailable)
	require.Zero(t, h.store.Len())
}

func TestAdd_FailureWithJournalKeepsRecordAndReplaysOnReload(t *testing.T) {
	h := newHarness(t, "u1", true)
	h.client.insertErr = client.ErrUnavailable
	ctx := context.Background()

	item, err := h.svc.Add(ctx, "https://example.com/paris")
	var addErr *AddError
	require.ErrorAs(t, err, &addErr)
	require.True(t, models.IsProvisional(item.ID))
	require.Equal(t, 1, h.store.Len())

	writes, err := h.journal.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, writes, 1)
	require.Equal(t, models.PendingUpsert, writes[0].Op)

	h.client.insertErr = nil
	h.client.insertIDs = []string{"srv-9"}
	require.NoError(t, h.svc.Reload(ctx))

	got, ok := h.store.Get("srv-9")
	require.True(t, ok)
	require.Equal(t, "https://example.com/paris", got.URL)
	_, ok = h.store.Get(item.ID)
	require.False(t, ok)

	writes, err = h.journal.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, writes)
}

func TestAdd_RejectsNonWebURL(t *testing.T) {
	h := newHarness(t, "u1", true)
	ctx := context.Background()

	for _, u := range []string{"example.com/article", "ftp://example.com/file", "https://"} {
		_, err := h.svc.Add(ctx, u)
		require.ErrorIs(t, err, ErrInvalidURL, u)
	}
	require.Empty(t, h.client.inserted)
	require.Zero(t, h.store.Len())

	writes, err := h.journal.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, writes)
}

func TestReload_DropsJournaledInsertRejectedAsInvalid(t *testing.T) {
	h := newHarness(t, "u1", true)
	ctx := context.Background()
	bad := rec(models.NewProvisionalID("0f1e2d3c-4b5a-4978-8695-a4b3c2d1e0f9"), 0)
	bad.URL = "example.com/article"
	require.NoError(t, h.journal.Put(ctx, models.PendingWrite{ID: bad.ID, Owner: "u1", Op: models.PendingUpsert, Item: &bad}))
	h.client.insertErr = fmt.Errorf("%w: invalid url", common.ErrorValidation)

	for range 3 {
		require.NoError(t, h.svc.Reload(ctx))
		_, ok := h.store.Get(bad.ID)
		require.False(t, ok)
		require.Empty(t, h.svc.Views(views.Filter{}).Feed)
	}

	writes, err := h.journal.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, writes)
}

func TestReload_ReplayedInsertFoldsIntoCommittedRow(t *testing.T) {
	ctx := context.Background()
	provisional := rec(models.NewProvisionalID("0f1e2d3c-4b5a-4978-8695-a4b3c2d1e0f9"), 0)
	provisional.URL = "https://example.com/paris"
	provisional.Title = "Paris"
	committed := provisional
	committed.ID = "0f1e2d3c-4b5a-4978-8695-a4b3c2d1e0f9"
	committed.Title = models.DefaultTitle

	h := newHarness(t, "u1", true, committed)
	require.NoError(t, h.journal.Put(ctx, models.PendingWrite{ID: provisional.ID, Owner: "u1", Op: models.PendingUpsert, Item: &provisional}))
	h.client.insertIDs = []string{committed.ID}

	require.NoError(t, h.svc.Reload(ctx))

	require.Equal(t, 1, h.store.Len())
	got, ok := h.store.Get(committed.ID)
	require.True(t, ok)
	require.Equal(t, "Paris", got.Title)

	require.Len(t, h.client.updates, 1)
	require.Equal(t, committed.ID, h.client.updates[0].id)

	writes, err := h.journal.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, writes)
}

func TestAdd_DeletedWhileInFlightIsRemovedRemotely(t *testing.T) {
	h := newHarness(t, "u1", false)
	h.client.insertIDs = []string{"srv-1"}
	ctx := context.Background()
	h.client.insertHook = func(item models.Item) {
		require.NoError(t, h.svc.PermanentDelete(ctx, item.ID))
	}

	_, err := h.svc.Add(ctx, "https://example.com")
	require.NoError(t, err)
	require.Zero(t, h.store.Len())
	require.Equal(t, []string{"srv-1"}, h.client.deletes)
}

func TestAdd_TrashedWhileInFlightPushesFullState(t *testing.T) {
	h := newHarness(t, "u1", false)
	h.client.insertIDs = []string{"srv-1"}
	ctx := context.Background()
	h.client.insertHook = func(item models.Item) {
		require.NoError(t, h.svc.SoftDelete(ctx, item.ID))
	}

	_, err := h.svc.Add(ctx, "https://example.com")
	require.NoError(t, err)

	require.Len(t, h.client.updates, 1)
	call := h.client.updates[0]
	require.Equal(t, "srv-1", call.id)
	require.NotNil(t, call.patch.DeletedAt)
	require.NotNil(t, call.patch.DeletedAt.Value)
}

func TestSoftDelete_IsOptimisticAndPushesDeletedAt(t *testing.T) {
	h := newHarness(t, "u1", false, rec("a", 0))

	require.NoError(t, h.svc.SoftDelete(context.Background(), "a"))

	got, _ := h.store.Get("a")
	require.True(t, got.DeletedAt.Equal(t0))
	require.Len(t, h.client.updates, 1)
	require.Equal(t, "u1", h.client.updates[0].owner)
	require.True(t, h.client.updates[0].patch.DeletedAt.Value.Equal(t0))
	require.Nil(t, h.client.updates[0].patch.ReviewedAt)

	v := h.svc.Views(views.Filter{})
	require.Empty(t, v.Feed)
	require.Len(t, v.Trash, 1)
}

func TestSoftDelete_RemoteFailureKeepsLocalChange(t *testing.T) {
	h := newHarness(t, "u1", true, rec("a", 0))
	h.client.updateErr = client.ErrUnavailable
	ctx := context.Background()

	err := h.svc.SoftDelete(ctx, "a")
	require.ErrorIs(t, err, client.ErrUnavailable)

	got, _ := h.store.Get("a")
	require.NotNil(t, got.DeletedAt)

	writes, err := h.journal.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, writes, 1)
	require.Equal(t, "a", writes[0].ID)
	require.NotNil(t, writes[0].Item.DeletedAt)
}

func TestSoftDelete_AlreadyTrashedKeepsRetentionWindow(t *testing.T) {
	a := rec("a", 0)
	a.DeletedAt = ptr(t0)
	h := newHarness(t, "u1", false, a)
	h.clock.Advance(31 * 24 * time.Hour)

	require.NoError(t, h.svc.SoftDelete(context.Background(), "a"))

	got, _ := h.store.Get("a")
	require.True(t, got.DeletedAt.Equal(t0))
	require.Empty(t, h.client.updates)
	require.Empty(t, h.svc.Views(views.Filter{}).Trash)
}

func TestSoftDelete_UnknownItem(t *testing.T) {
	h := newHarness(t, "u1", false)
	require.ErrorIs(t, h.svc.SoftDelete(context.Background(), "nope"), ErrUnknownItem)
	require.Empty(t, h.client.updates)
}

func TestRestore_WithinRetention(t *testing.T) {
	a := rec("a", 0)
	a.DeletedAt = ptr(t0)
	h := newHarness(t, "u1", false, a)
	h.clock.Advance(29 * 24 * time.Hour)

	require.NoError(t, h.svc.Restore(context.Background(), "a"))

	got, _ := h.store.Get("a")
	require.Nil(t, got.DeletedAt)
	require.Len(t, h.client.updates, 1)
	require.NotNil(t, h.client.updates[0].patch.DeletedAt)
	require.Nil(t, h.client.updates[0].patch.DeletedAt.Value)

	v := h.svc.Views(views.Filter{})
	require.Len(t, v.Feed, 1)
	require.Len(t, v.Review, 1)
}

func TestRestore_PastRetentionRefused(t *testing.T) {
	a := rec("a", 0)
	a.DeletedAt = ptr(t0)
	h := newHarness(t, "u1", false, a)
	h.clock.Advance(31 * 24 * time.Hour)

	require.ErrorIs(t, h.svc.Restore(context.Background(), "a"), ErrRetentionExpired)
	got, _ := h.store.Get("a")
	require.NotNil(t, got.DeletedAt)
	require.Empty(t, h.client.updates)
}

func TestRestore_NotInTrash(t *testing.T) {
	h := newHarness(t, "u1", false, rec("a", 0))
	require.ErrorIs(t, h.svc.Restore(context.Background(), "a"), ErrNotInTrash)
	require.ErrorIs(t, h.svc.Restore(context.Background(), "zz"), ErrUnknownItem)
}

func TestPermanentDelete(t *testing.T) {
	h := newHarness(t, "u1", false, rec("a", 0), rec("b", time.Minute))

	require.NoError(t, h.svc.PermanentDelete(context.Background(), "a"))
	require.Equal(t, 1, h.store.Len())
	require.Equal(t, []string{"a"}, h.client.deletes)

	require.ErrorIs(t, h.svc.PermanentDelete(context.Background(), "a"), ErrUnknownItem)
}

func TestPermanentDelete_FailureJournalsTombstone(t *testing.T) {
	h := newHarness(t, "u1", true, rec("a", 0))
	h.client.deleteErr = client.ErrUnavailable
	ctx := context.Background()

	require.Error(t, h.svc.PermanentDelete(ctx, "a"))
	require.Zero(t, h.store.Len())

	writes, err := h.journal.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, writes, 1)
	require.Equal(t, models.PendingDelete, writes[0].Op)
}

func TestEmptyBin_RemovesEveryDeletedRegardlessOfAge(t *testing.T) {
	old := rec("old", 0)
	old.DeletedAt = ptr(t0)
	recent := rec("recent", time.Hour)
	recent.DeletedAt = ptr(t0.Add(40 * 24 * time.Hour))
	active := rec("active", 2*time.Hour)

	h := newHarness(t, "u1", false, old, recent, active)
	h.clock.Advance(45 * 24 * time.Hour)

	require.Len(t, h.svc.Views(views.Filter{}).Trash, 1)

	n, err := h.svc.EmptyBin(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	snap := h.store.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, active, snap[0])

	require.Len(t, h.client.deleteMany, 1)
	require.ElementsMatch(t, []string{"old", "recent"}, h.client.deleteMany[0])
}

func TestEmptyBin_NothingTrashed(t *testing.T) {
	h := newHarness(t, "u1", false, rec("a", 0))
	n, err := h.svc.EmptyBin(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, h.client.deleteMany)
}

func TestMarkReviewed_AdvancesQueue(t *testing.T) {
	h := newHarness(t, "u1", false, rec("c", 2*time.Hour), rec("b", time.Hour), rec("a", 0))
	ctx := context.Background()

	q := h.svc.Views(views.Filter{}).Review
	head, ok := views.Head(q)
	require.True(t, ok)
	require.Equal(t, "a", head.ID)

	require.NoError(t, h.svc.MarkReviewed(ctx, head.ID))

	next := h.svc.Views(views.Filter{}).Review
	require.Len(t, next, 2)
	require.Equal(t, "b", next[0].ID)
	require.Equal(t, "c", next[1].ID)
	require.NotNil(t, h.client.updates[0].patch.ReviewedAt)

	require.NoError(t, h.svc.SoftDelete(ctx, "b"))
	require.Equal(t, "c", h.svc.Views(views.Filter{}).Review[0].ID)
}

func TestUpdate_MovesToSpace(t *testing.T) {
	h := newHarness(t, "u1", false, rec("a", 0))
	travel := "Travel"

	got, err := h.svc.Update(context.Background(), "a", models.Patch{Category: &travel})
	require.NoError(t, err)
	require.Equal(t, "Travel", got.Category)

	spaces := h.svc.Views(views.Filter{}).Spaces
	require.Len(t, spaces, 1)
	require.Equal(t, "Travel", spaces[0].Name)

	got, err = h.svc.Update(context.Background(), "a", models.Patch{})
	require.NoError(t, err)
	require.Equal(t, "Travel", got.Category)
	require.Len(t, h.client.updates, 1)

	_, err = h.svc.Update(context.Background(), "zz", models.Patch{Category: &travel})
	require.ErrorIs(t, err, ErrUnknownItem)
}

func TestMutations_WithoutOwnerAreNoops(t *testing.T) {
	h := newHarness(t, "", false)
	ctx := context.Background()

	require.NoError(t, h.svc.SoftDelete(ctx, "a"))
	require.NoError(t, h.svc.Restore(ctx, "a"))
	require.NoError(t, h.svc.MarkReviewed(ctx, "a"))
	require.NoError(t, h.svc.PermanentDelete(ctx, "a"))
	n, err := h.svc.EmptyBin(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	_, err = h.svc.Update(ctx, "a", models.Patch{})
	require.NoError(t, err)

	require.Empty(t, h.client.updates)
	require.Empty(t, h.client.deletes)
	require.Empty(t, h.client.deleteMany)
}

func TestReload_ReplaysJournalOverFreshSnapshot(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "u1", true, rec("a", 0), rec("b", time.Minute))

	// local changes whose remote writes failed earlier
	trashed := rec("a", 0)
	trashed.DeletedAt = ptr(t0.Add(time.Hour))
	provisional := rec(models.NewProvisionalID("x"), 2*time.Minute)
	require.NoError(t, h.journal.Put(ctx, models.PendingWrite{ID: "a", Owner: "u1", Op: models.PendingUpsert, Item: &trashed}))
	require.NoError(t, h.journal.Put(ctx, models.PendingWrite{ID: "b", Owner: "u1", Op: models.PendingDelete}))
	require.NoError(t, h.journal.Put(ctx, models.PendingWrite{ID: provisional.ID, Owner: "u1", Op: models.PendingUpsert, Item: &provisional}))
	h.client.insertIDs = []string{"srv-x"}

	require.NoError(t, h.svc.Reload(ctx))

	got, ok := h.store.Get("a")
	require.True(t, ok)
	require.NotNil(t, got.DeletedAt)
	_, ok = h.store.Get("b")
	require.False(t, ok)
	_, ok = h.store.Get("srv-x")
	require.True(t, ok)

	require.Len(t, h.client.updates, 1)
	require.Equal(t, "a", h.client.updates[0].id)
	require.NotNil(t, h.client.updates[0].patch.DeletedAt.Value)
	require.Equal(t, []string{"b"}, h.client.deletes)
	require.Len(t, h.client.inserted, 1)

	writes, err := h.journal.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, writes)
}

func TestReload_StillFailingWritesStayJournaled(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "u1", true, rec("a", 0))
	h.client.updateErr = client.ErrUnavailable

	require.Error(t, h.svc.SoftDelete(ctx, "a"))
	require.NoError(t, h.svc.Reload(ctx))

	got, _ := h.store.Get("a")
	require.NotNil(t, got.DeletedAt)

	writes, err := h.journal.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, writes, 1)
	// one failing call from SoftDelete plus two attempts while replaying
	require.Len(t, h.client.updates, 3)
}

func TestReload_RemoteDeletionWinsOverPendingUpdate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "u1", true)
	gone := rec("gone", 0)
	require.NoError(t, h.journal.Put(ctx, models.PendingWrite{ID: "gone", Owner: "u1", Op: models.PendingUpsert, Item: &gone}))
	h.client.updateErr = common.ErrorNotFound

	require.NoError(t, h.svc.Reload(ctx))
	require.Zero(t, h.store.Len())

	writes, err := h.journal.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, writes)
}

func TestBackgroundDispatcher_RunsDetached(t *testing.T) {
	h := newHarness(t, "u1", false, rec("a", 0))
	h.svc = NewItemService(h.client, h.store, staticOwner("u1"), nil, NewBackgroundDispatcher(time.Second), logging.NewDiscard(),
		WithClock(h.clock.Now))

	ctx, cancel := context.WithCancel(context.Background())
	h.client.updateErr = errors.New("boom")
	require.NoError(t, h.svc.SoftDelete(ctx, "a"))
	cancel()
	h.svc.Wait()

	h.client.mu.Lock()
	defer h.client.mu.Unlock()
	require.Len(t, h.client.updates, 1)
	got, _ := h.store.Get("a")
	require.NotNil(t, got.DeletedAt)
}

func TestViews_ScenarioSpacesAndSearch(t *testing.T) {
	h := newHarness(t, "u1", false)
	ctx := context.Background()
	travel := "Travel"
	paris := "Paris trip"
	tokyo := "Tokyo notes"

	first, err := h.svc.Add(ctx, "https://example.com/1")
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	second, err := h.svc.Add(ctx, "https://example.com/2")
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	third, err := h.svc.Add(ctx, "https://example.com/3")
	require.NoError(t, err)

	_, err = h.svc.Update(ctx, third.ID, models.Patch{Category: &travel})
	require.NoError(t, err)
	_, err = h.svc.Update(ctx, first.ID, models.Patch{Title: &paris})
	require.NoError(t, err)
	_, err = h.svc.Update(ctx, second.ID, models.Patch{Title: &tokyo})
	require.NoError(t, err)

	v := h.svc.Views(views.Filter{Query: "paris"})
	require.Len(t, v.Feed, 1)
	require.Equal(t, first.ID, v.Feed[0].ID)

	require.Len(t, v.Spaces, 2)
	require.Equal(t, models.InboxCategory, v.Spaces[0].Name)
	require.Len(t, v.Spaces[0].Items, 2)
	require.Equal(t, "Travel", v.Spaces[1].Name)
	require.Len(t, v.Spaces[1].Items, 1)
}
