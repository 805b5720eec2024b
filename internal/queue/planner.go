package queue

import (
	"errors"
	"fmt"
	"sync"

	"adbuilder/internal/builder"
)

var (
	ErrNotOpen      = errors.New("queue mode is not open")
	ErrUnknownGroup = errors.New("unknown group")
	ErrUnknownAdSet = errors.New("unknown ad set")
)

// Selector is the part of the composition store queue mode writes through.
type Selector interface {
	EnsureSelected(adSetID int64, assetIDs ...string) (int, error)
}

// Planner holds the transient per-group target choices of the queue modal.
// It is independent of the store: clearing it never touches builder state.
type Planner struct {
	mu      sync.Mutex
	open    bool
	buckets []Bucket
	adSets  []builder.AdSetView
	targets map[Group]map[int64]bool
}

func NewPlanner() *Planner {
	return &Planner{}
}

type State struct {
	Open    bool              `json:"open"`
	Buckets []Bucket          `json:"buckets"`
	Targets map[Group][]int64 `json:"targets"`
}

// Open groups the snapshot's pool and pre-selects suggested ad sets.
func (p *Planner) Open(snap builder.Snapshot) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.buckets = GroupAssets(snap.Pool)
	p.adSets = snap.AdSets
	p.targets = make(map[Group]map[int64]bool, len(p.buckets))
	for g, ids := range Suggest(p.buckets, p.adSets) {
		set := make(map[int64]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		p.targets[g] = set
	}
	return p.stateLocked()
}

func (p *Planner) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Planner) stateLocked() State {
	st := State{Open: p.open, Buckets: p.buckets, Targets: make(map[Group][]int64, len(p.targets))}
	for _, b := range p.buckets {
		st.Targets[b.Group] = p.orderedTargetsLocked(b.Group)
	}
	return st
}

// orderedTargetsLocked lists a group's targets in ad set list order.
func (p *Planner) orderedTargetsLocked(g Group) []int64 {
	ids := []int64{}
	for _, set := range p.adSets {
		if p.targets[g][set.ID] {
			ids = append(ids, set.ID)
		}
	}
	return ids
}

// Toggle flips one ad set in or out of a group's targets.
func (p *Planner) Toggle(g Group, adSetID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkLocked(g, adSetID); err != nil {
		return err
	}
	if p.targets[g] == nil {
		p.targets[g] = make(map[int64]bool)
	}
	if p.targets[g][adSetID] {
		delete(p.targets[g], adSetID)
	} else {
		p.targets[g][adSetID] = true
	}
	return nil
}

// SetTargets replaces a group's targets.
func (p *Planner) SetTargets(g Group, adSetIDs []int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return ErrNotOpen
	}
	if !p.hasGroupLocked(g) {
		return fmt.Errorf("group %q: %w", g, ErrUnknownGroup)
	}
	for _, id := range adSetIDs {
		if err := p.checkLocked(g, id); err != nil {
			return err
		}
	}
	set := make(map[int64]bool, len(adSetIDs))
	for _, id := range adSetIDs {
		set[id] = true
	}
	p.targets[g] = set
	return nil
}

func (p *Planner) checkLocked(g Group, adSetID int64) error {
	if !p.open {
		return ErrNotOpen
	}
	if !p.hasGroupLocked(g) {
		return fmt.Errorf("group %q: %w", g, ErrUnknownGroup)
	}
	for _, set := range p.adSets {
		if set.ID == adSetID {
			return nil
		}
	}
	return fmt.Errorf("ad set %d: %w", adSetID, ErrUnknownAdSet)
}

func (p *Planner) hasGroupLocked(g Group) bool {
	for _, b := range p.buckets {
		if b.Group == g {
			return true
		}
	}
	return false
}

// Assignment is one ad set's share of the preview.
type Assignment struct {
	AdSetID int64                   `json:"ad_set_id"`
	Assets  []builder.CreativeAsset `json:"assets"`
}

// Preview unions every group's assets into each targeted ad set. Ad sets
// come out in list order; an asset appears once per ad set.
func (p *Planner) Preview() []Assignment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.previewLocked()
}

func (p *Planner) previewLocked() []Assignment {
	if !p.open {
		return nil
	}
	var out []Assignment
	for _, set := range p.adSets {
		var assets []builder.CreativeAsset
		seen := make(map[string]bool)
		for _, b := range p.buckets {
			if !p.targets[b.Group][set.ID] {
				continue
			}
			for _, a := range b.Assets {
				if seen[a.ID] {
					continue
				}
				seen[a.ID] = true
				assets = append(assets, a)
			}
		}
		if len(assets) > 0 {
			out = append(out, Assignment{AdSetID: set.ID, Assets: assets})
		}
	}
	return out
}

type Result struct {
	AdSets        int     `json:"ad_sets"`
	AssetsAdded   int     `json:"assets_added"`
	SkippedAdSets []int64 `json:"skipped_ad_sets,omitempty"`
}

// Distribute applies the preview through EnsureSelected, so assets an ad
// set already holds stay selected. Ad sets removed since Open are skipped.
// The planner is cleared afterwards whatever the outcome.
func (p *Planner) Distribute(store Selector) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return Result{}, ErrNotOpen
	}
	defer p.clearLocked()

	var res Result
	for _, asg := range p.previewLocked() {
		ids := make([]string, len(asg.Assets))
		for i, a := range asg.Assets {
			ids[i] = a.ID
		}
		added, err := store.EnsureSelected(asg.AdSetID, ids...)
		if errors.Is(err, builder.ErrAdSetNotFound) {
			res.SkippedAdSets = append(res.SkippedAdSets, asg.AdSetID)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("distribute to ad set %d: %w", asg.AdSetID, err)
		}
		res.AdSets++
		res.AssetsAdded += added
	}
	return res, nil
}

// Clear drops the transient group and target choices.
func (p *Planner) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked()
}

func (p *Planner) clearLocked() {
	p.open = false
	p.buckets = nil
	p.adSets = nil
	p.targets = nil
}
