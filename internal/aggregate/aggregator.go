// Package aggregate drives the dashboard feature table: list loading,
// per-feature analysis fan-out, cascade recompute, and paging.
package aggregate

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"gapscope/internal/api"
	"gapscope/internal/model"
	"gapscope/internal/session"
)

// fanoutLimit bounds concurrent per-feature analysis requests.
const fanoutLimit = 4

// AnalysisClient is the slice of the service client the aggregator needs.
type AnalysisClient interface {
	MissingFeatures(ctx context.Context, page, limit int) ([]model.FeatureRecord, model.Pagination, error)
	FeatureDetails(ctx context.Context, name string, t model.Thresholds) (api.FeatureDetails, error)
	PatchDataType(ctx context.Context, name string, dataType model.DataType) error
}

// EventKind tags aggregator notifications.
type EventKind int

const (
	// EventList fires when a page of base records replaced the collection.
	EventList EventKind = iota
	// EventListFailed fires when the list fetch failed after retries.
	EventListFailed
	// EventFeature fires when one feature's analysis resolved (or failed).
	EventFeature
	// EventTypeChanged fires when a data-type edit was confirmed.
	EventTypeChanged
	// EventTypeChangeFailed fires when the patch was rejected and the
	// optimistic edit rolled back.
	EventTypeChangeFailed
)

// Event notifies the view that the collection changed.
type Event struct {
	Kind    EventKind
	Feature string
	Err     error
}

// Aggregator owns the FeatureRecord collection. It is the only mutator;
// views read through Snapshot. All operations are asynchronous and report
// through Events.
type Aggregator struct {
	client AnalysisClient
	bus    *session.Bus

	mu         sync.Mutex
	gen        int
	thresholds model.Thresholds
	page       int
	limit      int
	features   []*model.FeatureRecord
	byName     map[string]*model.FeatureRecord
	pagination model.Pagination
	listed     bool
	degraded   bool
	listErr    string

	events      chan Event
	listBackoff api.Backoff
	detailRetry api.FixedRetry
}

// New builds an aggregator with default retry policies.
func New(client AnalysisClient, bus *session.Bus, limit int) *Aggregator {
	if limit <= 0 {
		limit = 10
	}
	return &Aggregator{
		client:      client,
		bus:         bus,
		thresholds:  model.DefaultThresholds(),
		limit:       limit,
		byName:      map[string]*model.FeatureRecord{},
		events:      make(chan Event, 64),
		listBackoff: api.ListBackoff(),
		detailRetry: api.DetailRetry(),
	}
}

// Events is the notification stream consumed by the view.
func (a *Aggregator) Events() <-chan Event {
	return a.events
}

// Snapshot copies the current collection for read-only derivation.
func (a *Aggregator) Snapshot() ([]model.FeatureRecord, model.Pagination, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.FeatureRecord, len(a.features))
	for i, f := range a.features {
		out[i] = *f
	}
	return out, a.pagination, a.degraded
}

// ListError returns the banner message for a degraded view.
func (a *Aggregator) ListError() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listErr
}

// Thresholds returns the current correlation thresholds.
func (a *Aggregator) Thresholds() model.Thresholds {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.thresholds
}

// Page returns the current 0-based page.
func (a *Aggregator) Page() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

// Limit returns the current page size.
func (a *Aggregator) Limit() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.limit
}

// Load fetches the current page and fans out one analysis request per
// returned feature. It returns immediately; progress arrives on Events.
func (a *Aggregator) Load(ctx context.Context) {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.listed = false
	page, limit := a.page, a.limit
	a.mu.Unlock()

	go a.load(ctx, gen, page, limit)
}

func (a *Aggregator) load(ctx context.Context, gen, page, limit int) {
	var features []model.FeatureRecord
	var pagination model.Pagination
	err := a.listBackoff.Do(ctx, func(ctx context.Context) error {
		var ferr error
		features, pagination, ferr = a.client.MissingFeatures(ctx, page, limit)
		return ferr
	})

	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	if err != nil {
		a.degraded = true
		a.listErr = err.Error()
		a.mu.Unlock()
		a.emit(Event{Kind: EventListFailed, Err: err})
		return
	}
	a.listed = true
	a.degraded = false
	a.listErr = ""
	a.pagination = pagination
	a.features = make([]*model.FeatureRecord, 0, len(features))
	a.byName = make(map[string]*model.FeatureRecord, len(features))
	names := make([]string, 0, len(features))
	for i := range features {
		record := features[i]
		record.LoadingCorrelation = true
		record.LoadingInformative = true
		ptr := &record
		a.features = append(a.features, ptr)
		a.byName[record.Name] = ptr
		names = append(names, record.Name)
	}
	thresholds := a.thresholds
	a.mu.Unlock()

	a.emit(Event{Kind: EventList})
	a.fanOut(ctx, gen, names, thresholds)
}

// fanOut issues analysis requests concurrently. Completion order is
// unconstrained; each response only touches its own record, and stale
// generations are discarded on merge.
func (a *Aggregator) fanOut(ctx context.Context, gen int, names []string, thresholds model.Thresholds) {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(fanoutLimit)
	for _, name := range names {
		name := name
		group.Go(func() error {
			var details api.FeatureDetails
			err := a.detailRetry.Do(ctx, func(ctx context.Context) error {
				var ferr error
				details, ferr = a.client.FeatureDetails(ctx, name, thresholds)
				return ferr
			})
			a.merge(gen, name, details, err)
			return nil
		})
	}
	// Workers never return errors; Wait only orders the goroutines.
	_ = group.Wait()
}

// merge applies one analysis response. Loading flags always clear so a
// row never spins indefinitely; a failed row keeps its fields unset and
// renders as analysis unavailable.
func (a *Aggregator) merge(gen int, name string, details api.FeatureDetails, err error) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	record, ok := a.byName[name]
	if !ok {
		a.mu.Unlock()
		return
	}
	record.LoadingCorrelation = false
	record.LoadingInformative = false
	if err != nil {
		record.Correlated = nil
		record.Informative = nil
		record.AnalysisErr = err.Error()
	} else {
		correlated := details.Correlated
		if correlated == nil {
			correlated = []model.CorrelationEntry{}
		}
		informative := details.Informative
		record.Correlated = correlated
		record.Informative = &informative
		record.AnalysisErr = ""
	}
	a.mu.Unlock()
	a.emit(Event{Kind: EventFeature, Feature: name, Err: err})
}

// SetPage moves to another server page and reloads.
func (a *Aggregator) SetPage(ctx context.Context, page int) {
	a.mu.Lock()
	if page < 0 {
		page = 0
	}
	a.page = page
	a.mu.Unlock()
	a.Load(ctx)
}

// SetLimit changes the page size, resets to page 0, and reloads.
func (a *Aggregator) SetLimit(ctx context.Context, limit int) {
	a.mu.Lock()
	if limit <= 0 {
		limit = 10
	}
	a.limit = limit
	a.page = 0
	a.mu.Unlock()
	a.Load(ctx)
}

// SetThresholds replaces the correlation cutoffs and refetches every
// feature's analysis under a new generation.
func (a *Aggregator) SetThresholds(ctx context.Context, t model.Thresholds) {
	a.mu.Lock()
	a.thresholds = t
	a.mu.Unlock()
	a.recompute(ctx)
}

// recompute restarts analysis under a new generation. When no page of the
// current generation has landed (the list fetch is still in flight, or it
// failed) there are no records to refetch and the superseded list response
// will be discarded on arrival, so the page itself is requested again.
func (a *Aggregator) recompute(ctx context.Context) {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	if !a.listed {
		page, limit := a.page, a.limit
		a.mu.Unlock()
		go a.load(ctx, gen, page, limit)
		return
	}
	thresholds := a.thresholds
	names := a.markAllLoadingLocked()
	a.mu.Unlock()

	go a.fanOut(ctx, gen, names, thresholds)
}

// markAllLoadingLocked flags every record as loading again and returns
// the names to refetch. Caller holds the mutex.
func (a *Aggregator) markAllLoadingLocked() []string {
	names := make([]string, 0, len(a.features))
	for _, record := range a.features {
		record.LoadingCorrelation = true
		record.LoadingInformative = true
		record.AnalysisErr = ""
		names = append(names, record.Name)
	}
	return names
}

// SetDataType edits a feature's declared type: optimistic local update,
// PATCH to the service, rollback on rejection, and on success a bus
// broadcast plus a full analysis cascade (a type change can alter every
// pairwise correlation basis).
func (a *Aggregator) SetDataType(ctx context.Context, name string, newType model.DataType) {
	a.mu.Lock()
	record, ok := a.byName[name]
	if !ok {
		a.mu.Unlock()
		return
	}
	previous := record.DataType
	record.DataType = newType
	a.mu.Unlock()

	go func() {
		err := a.client.PatchDataType(ctx, name, newType)
		if err != nil {
			// Confirmed-state rollback: the service rejected the edit,
			// so the optimistic value must not stick.
			a.mu.Lock()
			if record, ok := a.byName[name]; ok && record.DataType == newType {
				record.DataType = previous
			}
			a.mu.Unlock()
			a.emit(Event{Kind: EventTypeChangeFailed, Feature: name, Err: err})
			return
		}

		if a.bus != nil {
			a.bus.Publish(session.TypeChange{Feature: name, DataType: newType})
		}

		a.emit(Event{Kind: EventTypeChanged, Feature: name})
		a.recompute(ctx)
	}()
}

// emit never blocks; a saturated listener loses intermediate redraw
// hints, not data.
func (a *Aggregator) emit(event Event) {
	select {
	case a.events <- event:
	default:
	}
}
