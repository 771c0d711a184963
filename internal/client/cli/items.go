package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mymind/internal/client/models"
	"github.com/dmitrijs2005/mymind/internal/client/services"
	"github.com/dmitrijs2005/mymind/internal/client/views"
)

var (
	ErrNotLoggedIn = errors.New("not logged in, type 'login'")
	ErrLocked      = errors.New("session is locked, type 'unlock'")
	ErrAmbiguousID = errors.New("ambiguous id")
	ErrEmptyQueue  = errors.New("nothing to review")
)

func usage(format string) error {
	return fmt.Errorf("usage: %s", format)
}

// ready gates every item command: signed in and not behind the app lock.
func (a *App) ready() error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}
	if a.gate.IsLocked() {
		return ErrLocked
	}
	return nil
}

func (a *App) views() views.Views {
	return a.items.Views(a.filter)
}

// resolveID accepts a full id or a unique prefix of one in pool.
func resolveID(ref string, pool ...[]models.Item) (string, error) {
	var found []string
	for _, items := range pool {
		for _, it := range items {
			if it.ID == ref {
				return it.ID, nil
			}
			if strings.HasPrefix(it.ID, ref) {
				found = append(found, it.ID)
			}
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%s: %w", ref, services.ErrUnknownItem)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%s: %w", ref, ErrAmbiguousID)
	}
}

// Add saves a link. It waits for the server and shows an alert with the
// entered url when the save fails.
func (a *App) Add(ctx context.Context, args []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if len(args) == 0 {
		return usage("add <url>")
	}

	item, err := a.items.Add(ctx, strings.Join(args, " "))
	if err != nil {
		var addErr *services.AddError
		if errors.As(err, &addErr) {
			a.logger.Warn(ctx, "save failed", "url", addErr.URL, "error", addErr.Err)
			return fmt.Errorf("could not save %s, try again: %w", addErr.URL, addErr.Err)
		}
		return err
	}

	fmt.Fprintln(a.out, "Saved")
	fmt.Fprintln(a.out, renderItem(item))
	return nil
}

// Feed shows active items, optionally narrowed by a search query. The
// query sticks until the next feed command.
func (a *App) Feed(ctx context.Context, args []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	a.filter.Query = strings.Join(args, " ")
	return a.printFeed()
}

func (a *App) printFeed() error {
	header := "Feed"
	if a.filter.Category != "" {
		header += " / " + a.filter.Category
	}
	if a.filter.Query != "" {
		header += fmt.Sprintf(" %q", a.filter.Query)
	}
	fmt.Fprintln(a.out, renderList(header, a.views().Feed, "Nothing here yet."))
	return nil
}

// Space narrows the feed to one category; "space clear" removes the filter.
func (a *App) Space(ctx context.Context, args []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if len(args) == 0 {
		return usage("space <name>|clear")
	}
	name := strings.Join(args, " ")
	if name == "clear" {
		name = ""
	}
	a.filter.Category = name
	return a.printFeed()
}

func (a *App) Spaces(ctx context.Context) error {
	if err := a.ready(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderSpaces(a.views().Spaces))
	return nil
}

func (a *App) Trash(ctx context.Context) error {
	if err := a.ready(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderTrash(a.views().Trash, a.now()))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if len(args) != 1 {
		return usage("delete <id>")
	}
	id, err := resolveID(args[0], a.views().Active)
	if err != nil {
		return err
	}
	if err := a.items.SoftDelete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Moved to trash")
	return nil
}

func (a *App) Restore(ctx context.Context, args []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if len(args) != 1 {
		return usage("restore <id>")
	}
	id, err := resolveID(args[0], a.views().Trash)
	if err != nil {
		return err
	}
	if err := a.items.Restore(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Restored")
	return nil
}

// Purge permanently deletes an item, active or trashed.
func (a *App) Purge(ctx context.Context, args []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if len(args) != 1 {
		return usage("purge <id>")
	}
	v := a.views()
	id, err := resolveID(args[0], v.Active, v.Trash)
	if err != nil {
		return err
	}
	if err := a.items.PermanentDelete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted forever")
	return nil
}

func (a *App) EmptyBin(ctx context.Context) error {
	if err := a.ready(); err != nil {
		return err
	}
	n, err := a.items.EmptyBin(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %d item(s)\n", n)
	return nil
}

func (a *App) reviewHead() (models.Item, int, error) {
	queue := a.views().Review
	head, ok := views.Head(queue)
	if !ok {
		return models.Item{}, 0, ErrEmptyQueue
	}
	return head, len(queue), nil
}

// Review shows the oldest unreviewed item.
func (a *App) Review(ctx context.Context) error {
	if err := a.ready(); err != nil {
		return err
	}
	head, n, err := a.reviewHead()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderReviewCard(head, n))
	return nil
}

// Keep marks the review head as reviewed and shows the next one.
func (a *App) Keep(ctx context.Context) error {
	return a.triage(ctx, a.items.MarkReviewed)
}

// Skip moves the review head to the trash and shows the next one.
func (a *App) Skip(ctx context.Context) error {
	return a.triage(ctx, a.items.SoftDelete)
}

func (a *App) triage(ctx context.Context, act func(context.Context, string) error) error {
	if err := a.ready(); err != nil {
		return err
	}
	head, _, err := a.reviewHead()
	if err != nil {
		return err
	}
	if err := act(ctx, head.ID); err != nil {
		return err
	}
	next, n, err := a.reviewHead()
	if errors.Is(err, ErrEmptyQueue) {
		fmt.Fprintln(a.out, "All caught up!")
		return nil
	}
	fmt.Fprintln(a.out, renderReviewCard(next, n))
	return nil
}

func (a *App) update(ctx context.Context, ref string, patch models.Patch) error {
	id, err := resolveID(ref, a.views().Active)
	if err != nil {
		return err
	}
	item, err := a.items.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderItem(item))
	return nil
}

// Move changes an item's space. An empty name puts it back in the Inbox.
func (a *App) Move(ctx context.Context, args []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if len(args) < 1 {
		return usage("move <id> <space>")
	}
	category := strings.Join(args[1:], " ")
	return a.update(ctx, args[0], models.Patch{Category: &category})
}

func (a *App) Title(ctx context.Context, args []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if len(args) < 2 {
		return usage("title <id> <text>")
	}
	title := strings.Join(args[1:], " ")
	return a.update(ctx, args[0], models.Patch{Title: &title})
}

// Tag replaces the item's tags; no tags clears them.
func (a *App) Tag(ctx context.Context, args []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if len(args) < 1 {
		return usage("tag <id> [tags...]")
	}
	tags := append([]string{}, args[1:]...)
	return a.update(ctx, args[0], models.Patch{Tags: &tags})
}

// Reload refetches the collection and replays journaled writes.
func (a *App) Reload(ctx context.Context) error {
	if err := a.ready(); err != nil {
		return err
	}
	a.items.Wait()
	if err := a.items.Reload(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Loaded %d item(s)\n", len(a.views().Active))
	return nil
}
