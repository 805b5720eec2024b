// Package launch validates a composed campaign and writes it out as
// campaign, ad set, asset and ad variant records, one at a time.
package launch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"adbuilder/internal/builder"
	"adbuilder/internal/interfaces"
	"adbuilder/internal/logger"
	"adbuilder/internal/metrics"
	"adbuilder/internal/models"
	"adbuilder/internal/tokens"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRunning    State = "running"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// tenantCheckpoint is the progress reported once the tenant is known.
const tenantCheckpoint = 5.0

const DefaultStepTimeout = 30 * time.Second

type Progress struct {
	State   State   `json:"state"`
	Percent float64 `json:"percent"`
	Step    string  `json:"step,omitempty"`
}

type ProgressFunc func(Progress)

type Options struct {
	Mode Mode
	// StepTimeout bounds every external call. Zero means DefaultStepTimeout,
	// negative disables the bound.
	StepTimeout time.Duration
	// Compensate deletes already-written records, newest first, when a
	// launch fails and the store implements interfaces.RecordDeleter.
	Compensate bool
	Now        func() time.Time
}

type Deps struct {
	Tenants  interfaces.TenantResolver
	Store    interfaces.RecordStore
	Notifier interfaces.Notifier
	Feedback interfaces.FeedbackSink
	Log      *logger.Logger
	Metrics  *metrics.Metrics
}

type Pipeline struct {
	deps Deps
	opts Options
	log  *logger.Logger

	notifications sync.WaitGroup
}

func NewPipeline(deps Deps, opts Options) *Pipeline {
	if opts.StepTimeout == 0 {
		opts.StepTimeout = DefaultStepTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mode == "" {
		opts.Mode = ModeFlattened
	}
	return &Pipeline{
		deps: deps,
		opts: opts,
		log:  logger.OrNop(deps.Log).With("component", "launch"),
	}
}

type CreatedRecord struct {
	Entity interfaces.Entity `json:"entity"`
	ID     string            `json:"id"`
}

type Result struct {
	State       State           `json:"state"`
	CampaignID  string          `json:"campaign_id,omitempty"`
	AdsCreated  int             `json:"ads_created"`
	Created     []CreatedRecord `json:"created"`
	Compensated bool            `json:"compensated,omitempty"`
}

// RunOption overrides pipeline defaults for one launch.
type RunOption func(*runConfig)

type runConfig struct {
	mode     Mode
	feedback interfaces.FeedbackSink
}

func WithMode(m Mode) RunOption {
	return func(c *runConfig) {
		if m != "" {
			c.mode = m
		}
	}
}

// WithFeedback sends this launch's messages to sink instead of Deps.Feedback.
func WithFeedback(sink interfaces.FeedbackSink) RunOption {
	return func(c *runConfig) {
		if sink != nil {
			c.feedback = sink
		}
	}
}

// Session is a builder session the pipeline can launch and reset.
type Session interface {
	Snapshot() builder.Snapshot
	ResetAfterLaunch()
}

// LaunchSession runs the pipeline on a snapshot of s and resets s only when
// every record was written. On failure s is left as the user had it.
func (p *Pipeline) LaunchSession(ctx context.Context, s Session, report ProgressFunc, opts ...RunOption) (*Result, error) {
	res, err := p.Run(ctx, s.Snapshot(), report, opts...)
	if err != nil {
		return res, err
	}
	s.ResetAfterLaunch()
	return res, nil
}

// Run validates snap and writes it out. The snapshot is a value copy, so
// later edits to the builder never reach an in-flight launch.
func (p *Pipeline) Run(ctx context.Context, snap builder.Snapshot, report ProgressFunc, opts ...RunOption) (*Result, error) {
	cfg := runConfig{mode: p.opts.Mode, feedback: p.deps.Feedback}
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &run{p: p, cfg: cfg, report: report, res: &Result{State: StateIdle}}

	r.emit(StateValidating, 0, "validating")
	if err := Validate(snap); err != nil {
		r.emit(StateIdle, 0, "")
		r.feedback(interfaces.FeedbackError, "Cannot launch campaign", err.Error())
		p.countLaunch("invalid")
		return r.res, err
	}
	if cfg.mode == ModePerAdSet {
		r.warnUnresolved(snap)
	}

	started := p.opts.Now()
	r.emit(StateRunning, 0, "resolving organization")

	var tenantID string
	_, err := p.call(ctx, func(ctx context.Context) error {
		id, err := p.deps.Tenants.ResolveTenant(ctx)
		tenantID = id
		return err
	})
	if err == nil && strings.TrimSpace(tenantID) == "" {
		err = errors.New("empty tenant id")
	}
	if err != nil {
		return r.fail(ctx, &IdentityError{Err: err})
	}
	r.emit(StateRunning, tenantCheckpoint, "organization resolved")

	pl := buildPlan(snap, tenantID, cfg.mode, started)
	r.total = pl.units()

	if err := r.execute(ctx, pl); err != nil {
		return r.fail(ctx, err)
	}

	r.res.State = StateSucceeded
	r.res.AdsCreated = pl.ads()
	r.emit(StateSucceeded, 100, "done")
	p.observeDuration(started)
	p.countLaunch("succeeded")
	p.log.Info("campaign launched", "campaign_id", r.res.CampaignID, "ads", r.res.AdsCreated, "records", len(r.res.Created))
	r.feedback(interfaces.FeedbackInfo, "Campaign launched",
		fmt.Sprintf("%q was saved as a draft with %d ads.", pl.campaign.Name, r.res.AdsCreated))
	p.notify(fmt.Sprintf("Campaign %q launched: %d ads across %d ad sets.", pl.campaign.Name, r.res.AdsCreated, len(pl.adSets)))
	return r.res, nil
}

// Wait blocks until pending notifications finish.
func (p *Pipeline) Wait() {
	p.notifications.Wait()
}

type run struct {
	p      *Pipeline
	cfg    runConfig
	report ProgressFunc
	res    *Result

	total   int
	done    int
	percent float64

	// abandoned holds creates that outlived the step timeout and may still
	// commit.
	abandoned []abandonedRecord
}

type abandonedRecord struct {
	CreatedRecord
	result <-chan error
}

func (r *run) emit(state State, percent float64, step string) {
	if state == StateRunning || state == StateSucceeded || state == StateFailed {
		if percent < r.percent {
			percent = r.percent
		}
		r.percent = percent
	}
	if r.report != nil {
		r.report(Progress{State: state, Percent: percent, Step: step})
	}
}

// advance marks one record written. Progress only reaches 100 on the last one.
func (r *run) advance(step string) {
	r.done++
	pct := tenantCheckpoint + (100-tenantCheckpoint)*float64(r.done)/float64(r.total)
	if r.done < r.total && pct >= 100 {
		pct = math.Nextafter(100, 0)
	}
	if r.done >= r.total {
		pct = 100
	}
	r.emit(StateRunning, pct, step)
}

func (r *run) record(entity interfaces.Entity, id string) {
	r.res.Created = append(r.res.Created, CreatedRecord{Entity: entity, ID: id})
	if r.p.deps.Metrics != nil {
		r.p.deps.Metrics.RecordsCreated.WithLabelValues(string(entity)).Inc()
	}
}

// create runs one store insert for a record whose id is already assigned.
// If the step times out while the insert is still running, the record is
// kept as abandoned so compensation can wait for it.
func (r *run) create(ctx context.Context, entity interfaces.Entity, id string, fn func(context.Context) error) error {
	late, err := r.p.call(ctx, fn)
	if late != nil {
		r.abandoned = append(r.abandoned, abandonedRecord{
			CreatedRecord: CreatedRecord{Entity: entity, ID: id},
			result:        late,
		})
	}
	return err
}

func (r *run) execute(ctx context.Context, pl plan) error {
	p := r.p
	campaign := pl.campaign
	campaign.ID = uuid.NewString()
	if err := r.create(ctx, interfaces.EntityCampaign, campaign.ID, func(ctx context.Context) error {
		return p.deps.Store.CreateCampaign(ctx, &campaign)
	}); err != nil {
		return &StoreError{Entity: interfaces.EntityCampaign, Label: fmt.Sprintf("%q", campaign.Name), Err: err}
	}
	r.res.CampaignID = campaign.ID
	r.record(interfaces.EntityCampaign, campaign.ID)
	r.advance("campaign created")

	// Builder asset id -> persisted asset id, so shared assets are written once.
	assetIDs := make(map[string]string)

	for _, setPlan := range pl.adSets {
		adSet := setPlan.record
		adSet.CampaignID = campaign.ID
		adSet.ID = uuid.NewString()
		if err := r.create(ctx, interfaces.EntityAdSet, adSet.ID, func(ctx context.Context) error {
			return p.deps.Store.CreateAdSet(ctx, &adSet)
		}); err != nil {
			return &StoreError{Entity: interfaces.EntityAdSet, Label: fmt.Sprintf("%q", adSet.Name), Err: err}
		}
		r.record(interfaces.EntityAdSet, adSet.ID)
		r.advance("ad set " + adSet.Name)

		for _, a := range setPlan.assets {
			assetID, ok := assetIDs[a.ID]
			if ok {
				r.advance("asset " + a.Name + " reused")
			} else {
				rec := assetRecord(a, campaign.TenantID)
				rec.ID = uuid.NewString()
				if err := r.create(ctx, interfaces.EntityAsset, rec.ID, func(ctx context.Context) error {
					return p.deps.Store.CreateAsset(ctx, &rec)
				}); err != nil {
					return &StoreError{Entity: interfaces.EntityAsset, Label: fmt.Sprintf("%q", rec.Name), Err: err}
				}
				assetID = rec.ID
				assetIDs[a.ID] = assetID
				r.record(interfaces.EntityAsset, assetID)
				r.advance("asset " + rec.Name)
			}

			for _, cv := range pl.variants {
				variant := models.AdVariant{
					ID:          uuid.NewString(),
					CampaignID:  campaign.ID,
					AdSetID:     adSet.ID,
					AssetID:     assetID,
					Headline:    cv.Headline,
					PrimaryText: cv.PrimaryText,
					CTA:         cv.CTA,
					Status:      models.AdVariantStatusPending,
				}
				if strings.TrimSpace(variant.CTA) == "" {
					variant.CTA = builder.DefaultCTA
				}
				if err := r.create(ctx, interfaces.EntityAdVariant, variant.ID, func(ctx context.Context) error {
					return p.deps.Store.CreateAdVariant(ctx, &variant)
				}); err != nil {
					return &StoreError{Entity: interfaces.EntityAdVariant, Label: fmt.Sprintf("for %q", a.Name), Err: err}
				}
				r.record(interfaces.EntityAdVariant, variant.ID)
				r.advance("ad variant for " + a.Name)
			}
		}
	}
	return nil
}

func (r *run) fail(ctx context.Context, err error) (*Result, error) {
	p := r.p
	r.res.State = StateFailed
	r.emit(StateFailed, r.percent, "failed")
	p.countLaunch("failed")
	p.log.Error("campaign launch failed", "error", err, "records_written", len(r.res.Created))
	r.feedback(interfaces.FeedbackError, "Launch failed", err.Error())
	if p.opts.Compensate && (len(r.res.Created) > 0 || len(r.abandoned) > 0) {
		r.res.Compensated = r.compensate(ctx)
	} else if len(r.abandoned) > 0 {
		p.log.Warn("timed out record may still be written", "entity", r.abandoned[0].Entity, "id", r.abandoned[0].ID)
	}
	return r.res, err
}

// compensate deletes created records newest first and reports whether all
// of them went away. Abandoned creates are waited on for one more step
// timeout; one that is still running is deleted by id and leaves the
// launch unclean.
func (r *run) compensate(ctx context.Context) bool {
	p := r.p
	deleter, ok := p.deps.Store.(interfaces.RecordDeleter)
	if !ok {
		p.log.Warn("store cannot delete records, leaving partial launch in place",
			"records", len(r.res.Created), "abandoned", len(r.abandoned))
		return false
	}
	ctx = context.WithoutCancel(ctx)
	clean := true

	for _, ab := range r.abandoned {
		settled, err := p.await(ab.result)
		switch {
		case !settled:
			clean = false
			p.log.Warn("deleting record whose create is still running", "entity", ab.Entity, "id", ab.ID)
			p.deleteRecord(ctx, deleter, ab.CreatedRecord)
		case err == nil:
			r.res.Created = append(r.res.Created, ab.CreatedRecord)
		}
	}

	for i := len(r.res.Created) - 1; i >= 0; i-- {
		if !p.deleteRecord(ctx, deleter, r.res.Created[i]) {
			clean = false
		}
	}
	return clean
}

func (p *Pipeline) deleteRecord(ctx context.Context, deleter interfaces.RecordDeleter, rec CreatedRecord) bool {
	_, err := p.call(ctx, func(ctx context.Context) error { return deleter.DeleteRecord(ctx, rec.Entity, rec.ID) })
	if err != nil {
		p.log.Warn("compensating delete failed", "entity", rec.Entity, "id", rec.ID, "error", err)
		return false
	}
	return true
}

// await waits up to one step timeout for an abandoned create to finish.
func (p *Pipeline) await(result <-chan error) (settled bool, err error) {
	timeout := p.opts.StepTimeout
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-result:
		return true, err
	case <-timer.C:
		return false, nil
	}
}

// call runs fn under the step timeout. A collaborator that ignores its
// context still cannot hold the pipeline past the deadline. When the
// deadline wins while fn is still running, late yields fn's eventual result.
func (p *Pipeline) call(ctx context.Context, fn func(context.Context) error) (late <-chan error, err error) {
	if p.opts.StepTimeout < 0 {
		return nil, fn(ctx)
	}
	cctx, cancel := context.WithTimeout(ctx, p.opts.StepTimeout)

	done := make(chan error, 1)
	go func() {
		defer cancel()
		done <- fn(cctx)
	}()

	select {
	case err := <-done:
		if err == nil || cctx.Err() == nil {
			return nil, err
		}
		return nil, p.timeoutErr(ctx)
	case <-cctx.Done():
	}
	// fn may have finished at the deadline.
	select {
	case err := <-done:
		if err == nil {
			return nil, nil
		}
		return nil, p.timeoutErr(ctx)
	default:
		return done, p.timeoutErr(ctx)
	}
}

func (p *Pipeline) timeoutErr(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w after %s", ErrStepTimeout, p.opts.StepTimeout)
}

func (r *run) warnUnresolved(snap builder.Snapshot) {
	var keys []string
	for _, set := range snap.AdSets {
		keys = append(keys, tokens.Unresolved(set.Name)...)
	}
	if len(keys) == 0 {
		return
	}
	r.feedback(interfaces.FeedbackInfo, "Unrecognised name tokens",
		"These placeholders will be kept as typed: {{"+strings.Join(keys, "}}, {{")+"}}")
}

func (r *run) feedback(kind interfaces.FeedbackKind, title, detail string) {
	if r.cfg.feedback != nil {
		r.cfg.feedback.Report(kind, title, detail)
	}
}

// notify never affects the launch outcome.
func (p *Pipeline) notify(message string) {
	if p.deps.Notifier == nil {
		return
	}
	p.notifications.Add(1)
	go func() {
		defer p.notifications.Done()
		defer func() {
			if rec := recover(); rec != nil {
				p.log.Warn("notifier panicked", "panic", rec)
			}
		}()
		timeout := p.opts.StepTimeout
		if timeout <= 0 {
			timeout = DefaultStepTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := p.deps.Notifier.Notify(ctx, message); err != nil {
			p.log.Warn("launch notification failed", "error", err)
		}
	}()
}

func (p *Pipeline) countLaunch(outcome string) {
	if p.deps.Metrics != nil {
		p.deps.Metrics.Launches.WithLabelValues(outcome).Inc()
	}
}

func (p *Pipeline) observeDuration(started time.Time) {
	if p.deps.Metrics != nil {
		p.deps.Metrics.LaunchDuration.Observe(p.opts.Now().Sub(started).Seconds())
	}
}
