package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/todosync/pkg/convert"
	"github.com/harrisonrobin/todosync/pkg/model"
	"github.com/harrisonrobin/todosync/pkg/remote"
)

// Store is the local item store the reconciler drives. GetByID reports an
// absent id with model.ErrNotFound. Implementations must be safe for
// concurrent use.
type Store interface {
	All(ctx context.Context) ([]model.Task, error)
	GetByID(ctx context.Context, id string) (model.Task, error)
	Upsert(ctx context.Context, t model.Task) error
	Delete(ctx context.Context, id string) error
	Unsynced(ctx context.Context) ([]model.Task, error)
	MarkSynced(ctx context.Context, id string) error
}

// Gateway is the remote list service. Any failed call is just that — the
// reconciler does not distinguish timeouts, 4xx or bad payloads.
type Gateway interface {
	LoadAll(ctx context.Context) ([]remote.Record, error)
	Create(ctx context.Context, rec remote.Record) error
	Update(ctx context.Context, rec remote.Record) error
	Delete(ctx context.Context, id string) error
}

const defaultIdleDelay = 2 * time.Second

// Reconciler keeps the local store consistent with the remote list. Mutations
// write locally first and schedule a sync pass; passes are serialized through
// a single worker, which also carries best-effort remote deletes so the
// revision counter only ever has one writer.
type Reconciler struct {
	store     Store
	gw        Gateway
	conv      *convert.Converter
	feed      *StateFeed
	idleDelay time.Duration

	syncReq chan struct{}
	deletes chan string
	done    chan struct{}
	wg      sync.WaitGroup

	passMu sync.Mutex
}

// New builds a reconciler over the given collaborators and starts its sync
// worker. Call Close to stop it.
func New(st Store, gw Gateway, conv *convert.Converter) *Reconciler {
	r := &Reconciler{
		store:     st,
		gw:        gw,
		conv:      conv,
		feed:      NewStateFeed(),
		idleDelay: defaultIdleDelay,
		syncReq:   make(chan struct{}, 1),
		deletes:   make(chan string, 16),
		done:      make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// States exposes the observable sync state.
func (r *Reconciler) States() *StateFeed { return r.feed }

// Tasks returns the local list, most recently updated first.
func (r *Reconciler) Tasks(ctx context.Context) ([]model.Task, error) {
	return r.store.All(ctx)
}

// Close stops the sync worker after flushing any queued remote deletes.
func (r *Reconciler) Close() {
	close(r.done)
	r.wg.Wait()
}

// RequestSync schedules a sync pass. A pass already pending or running absorbs
// the request, so concurrent mutations coalesce into one pass.
func (r *Reconciler) RequestSync() {
	select {
	case r.syncReq <- struct{}{}:
	default:
	}
}

func (r *Reconciler) run() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			r.drainDeletes()
			return
		case id := <-r.deletes:
			r.remoteDelete(id)
		case <-r.syncReq:
			r.runPass(context.Background())
		}
	}
}

func (r *Reconciler) drainDeletes() {
	for {
		select {
		case id := <-r.deletes:
			r.remoteDelete(id)
		default:
			return
		}
	}
}

func (r *Reconciler) remoteDelete(id string) {
	if err := r.gw.Delete(context.Background(), id); err != nil {
		log.Printf("remote delete of %s failed, sides diverge until next reconciliation: %v", id, err)
	}
}

// Add stores a new task locally, marks it unsynced and schedules a sync pass.
// The returned task carries the assigned id and stamps.
func (r *Reconciler) Add(ctx context.Context, t model.Task) (model.Task, error) {
	if t.Text == "" {
		return model.Task{}, fmt.Errorf("task text must not be empty")
	}

	now := time.Now()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	t.Synced = false

	if err := r.store.Upsert(ctx, t); err != nil {
		return model.Task{}, err
	}
	r.RequestSync()
	return t, nil
}

// Update rewrites an existing task. The original creation time is preserved
// and the update stamp is strictly greater than the previous one, so
// successive edits stay ordered even within one clock tick.
func (r *Reconciler) Update(ctx context.Context, t model.Task) (model.Task, error) {
	if t.Text == "" {
		return model.Task{}, fmt.Errorf("task text must not be empty")
	}

	prev, err := r.store.GetByID(ctx, t.ID)
	if err != nil {
		return model.Task{}, err
	}

	t.CreatedAt = prev.CreatedAt
	stamp := time.Now()
	if !stamp.After(prev.UpdatedAt) {
		stamp = prev.UpdatedAt.Add(time.Millisecond)
	}
	t.UpdatedAt = stamp
	t.Synced = false

	if err := r.store.Upsert(ctx, t); err != nil {
		return model.Task{}, err
	}
	r.RequestSync()
	return t, nil
}

// Remove deletes the task locally right away and queues a best-effort remote
// delete. A failed remote delete is only logged; deletes are not tombstoned,
// so another device may resurrect the item on its next pull.
func (r *Reconciler) Remove(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	select {
	case r.deletes <- id:
	default:
		log.Printf("remote delete queue full, dropping delete of %s", id)
	}
	return nil
}

// RunSync performs one full push-pull-merge pass synchronously. Passes never
// interleave: a concurrent call waits for the running one to finish.
func (r *Reconciler) RunSync(ctx context.Context) error {
	return r.runPass(ctx)
}

func (r *Reconciler) runPass(ctx context.Context) error {
	r.passMu.Lock()
	defer r.passMu.Unlock()

	r.feed.publish(State{Status: StatusSyncing})

	// Push phase. One item failing to push never aborts the pass; it stays
	// unsynced and is retried next time.
	unsynced, err := r.store.Unsynced(ctx)
	if err != nil {
		return r.fail(fmt.Errorf("failed to read unsynced tasks: %w", err))
	}
	now := time.Now()
	for _, t := range unsynced {
		rec := r.conv.ToRemote(t, now)
		if err := r.gw.Update(ctx, rec); err != nil {
			// The record may simply not exist remotely yet.
			if err := r.gw.Create(ctx, rec); err != nil {
				log.Printf("push of %s failed, leaving unsynced: %v", t.ID, err)
				continue
			}
		}
		if err := r.store.MarkSynced(ctx, t.ID); err != nil {
			log.Printf("failed to mark %s synced: %v", t.ID, err)
		}
	}

	// Pull phase. This is the only failure that aborts the pass; push results
	// already applied stay applied.
	records, err := r.gw.LoadAll(ctx)
	if err != nil {
		return r.fail(fmt.Errorf("failed to load remote list: %w", err))
	}

	// Merge phase.
	for _, rec := range records {
		pulled, err := r.conv.FromRemote(rec)
		if err != nil {
			log.Printf("skipping malformed remote item %q: %v", rec.ID, err)
			continue
		}

		local, err := r.store.GetByID(ctx, pulled.ID)
		switch {
		case errors.Is(err, model.ErrNotFound):
			pulled.Synced = true
			if err := r.store.Upsert(ctx, pulled); err != nil {
				log.Printf("failed to insert pulled task %s: %v", pulled.ID, err)
			}
		case err != nil:
			log.Printf("failed to read %s during merge: %v", pulled.ID, err)
		case !local.Synced:
			// Pending local edit not yet confirmed pushed; it wins over the
			// pull until the next push confirms it.
		default:
			if convert.ContentEquals(local, pulled) {
				continue
			}
			pulled.Synced = true
			if err := r.store.Upsert(ctx, pulled); err != nil {
				log.Printf("failed to overwrite %s with remote content: %v", pulled.ID, err)
			}
		}
	}

	seq := r.feed.publish(State{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("synced %d items", len(records)),
	})
	r.feed.revertAfter(r.idleDelay, seq)
	return nil
}

func (r *Reconciler) fail(err error) error {
	seq := r.feed.publish(State{Status: StatusError, Message: err.Error()})
	r.feed.revertAfter(r.idleDelay, seq)
	return err
}
