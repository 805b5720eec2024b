// Package builder holds the in-memory campaign composition state: metadata,
// the asset pool, ad sets and the shared copy variants.
package builder

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrAdSetNotFound       = errors.New("ad set not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrCopyVariantNotFound = errors.New("copy variant not found")
	ErrUnknownField        = errors.New("unknown field")
	ErrInvalidValue        = errors.New("invalid value")
)

type Store struct {
	mu sync.RWMutex

	seed      []CreativeAsset
	metadata  CampaignMetadata
	pool      []CreativeAsset
	poolIndex map[string]int
	adSets    []AdSet
	variants  []CopyVariant

	clock  func() time.Time
	lastID int64
}

type Option func(*Store)

// WithClock overrides the time source used for ids.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStore builds a store whose pool starts (and resets) to seed.
func NewStore(seed []CreativeAsset, opts ...Option) *Store {
	s := &Store{clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.seed = dedupeAssets(seed)
	s.resetLocked()
	return s
}

func dedupeAssets(in []CreativeAsset) []CreativeAsset {
	out := make([]CreativeAsset, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		if a.ID == "" || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		c := a.clone()
		c.Tags = normalizeTags(c.Tags)
		out = append(out, c)
	}
	return out
}

// nextID hands out time-based ids that stay unique within the session.
func (s *Store) nextID() int64 {
	id := s.clock().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Reset restores empty metadata, the seed pool, one ad set and one copy variant.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.metadata = CampaignMetadata{}
	s.pool = make([]CreativeAsset, 0, len(s.seed))
	s.poolIndex = make(map[string]int, len(s.seed))
	for _, a := range s.seed {
		s.poolIndex[a.ID] = len(s.pool)
		s.pool = append(s.pool, a.clone())
	}
	s.adSets = []AdSet{s.newAdSetLocked(1)}
	s.variants = []CopyVariant{s.newCopyVariantLocked()}
}

func (s *Store) newAdSetLocked(n int) AdSet {
	return AdSet{
		ID:               s.nextID(),
		Name:             fmt.Sprintf("Ad Set %d", n),
		Audience:         DefaultAudience,
		SelectedAssetIDs: []string{},
	}
}

func (s *Store) newCopyVariantLocked() CopyVariant {
	return CopyVariant{ID: s.nextID(), CTA: DefaultCTA}
}

func (s *Store) Metadata() CampaignMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata
}

func (s *Store) SetMetadata(m CampaignMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = m
}

func (s *Store) UpdateMetadata(field MetadataField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch field {
	case MetadataFieldName:
		s.metadata.Name = value
	case MetadataFieldObjective:
		s.metadata.Objective = value
	case MetadataFieldBudget:
		s.metadata.Budget = value
	case MetadataFieldAudience:
		s.metadata.Audience = value
	default:
		return fmt.Errorf("campaign field %q: %w", field, ErrUnknownField)
	}
	return nil
}

func (s *Store) AddAdSet() AdSetView {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.newAdSetLocked(len(s.adSets) + 1)
	s.adSets = append(s.adSets, set)
	return s.viewLocked(set)
}

// RemoveAdSet may leave the store with zero ad sets.
func (s *Store) RemoveAdSet(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.adSetIndexLocked(id)
	if i < 0 {
		return fmt.Errorf("remove ad set %d: %w", id, ErrAdSetNotFound)
	}
	s.adSets = append(s.adSets[:i:i], s.adSets[i+1:]...)
	return nil
}

// DuplicateAdSet inserts a copy right after the source. The copy gets a new
// selection slice holding the same asset ids.
func (s *Store) DuplicateAdSet(id int64) (AdSetView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.adSetIndexLocked(id)
	if i < 0 {
		return AdSetView{}, fmt.Errorf("duplicate ad set %d: %w", id, ErrAdSetNotFound)
	}
	src := s.adSets[i]
	dup := AdSet{
		ID:               s.nextID(),
		Name:             src.Name + " (Copy)",
		Budget:           src.Budget,
		Audience:         src.Audience,
		SelectedAssetIDs: append([]string{}, src.SelectedAssetIDs...),
	}
	out := make([]AdSet, 0, len(s.adSets)+1)
	out = append(out, s.adSets[:i+1]...)
	out = append(out, dup)
	out = append(out, s.adSets[i+1:]...)
	s.adSets = out
	return s.viewLocked(dup), nil
}

// UpdateAdSet sets one field. Scalar fields take a string; selectedAssets
// takes []CreativeAsset or []string of pool ids.
func (s *Store) UpdateAdSet(id int64, field AdSetField, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.adSetIndexLocked(id)
	if i < 0 {
		return fmt.Errorf("update ad set %d: %w", id, ErrAdSetNotFound)
	}
	set := &s.adSets[i]

	if field == AdSetFieldSelectedAssets {
		ids, err := s.selectionIDsLocked(value)
		if err != nil {
			return fmt.Errorf("update ad set %d: %w", id, err)
		}
		set.SelectedAssetIDs = ids
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("ad set field %q expects a string: %w", field, ErrInvalidValue)
	}
	switch field {
	case AdSetFieldName:
		set.Name = str
	case AdSetFieldBudget:
		set.Budget = str
	case AdSetFieldAudience:
		set.Audience = str
	default:
		return fmt.Errorf("ad set field %q: %w", field, ErrUnknownField)
	}
	return nil
}

// AdSetPatch holds the ad set fields to change; nil fields are kept.
type AdSetPatch struct {
	Name             *string
	Budget           *string
	Audience         *string
	SelectedAssetIDs *[]string
}

// PatchAdSet applies every field of patch or none of them.
func (s *Store) PatchAdSet(id int64, patch AdSetPatch) (AdSetView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.adSetIndexLocked(id)
	if i < 0 {
		return AdSetView{}, fmt.Errorf("update ad set %d: %w", id, ErrAdSetNotFound)
	}

	var selection []string
	if patch.SelectedAssetIDs != nil {
		ids, err := s.selectionIDsLocked(*patch.SelectedAssetIDs)
		if err != nil {
			return AdSetView{}, fmt.Errorf("update ad set %d: %w", id, err)
		}
		selection = ids
	}

	set := &s.adSets[i]
	if patch.Name != nil {
		set.Name = *patch.Name
	}
	if patch.Budget != nil {
		set.Budget = *patch.Budget
	}
	if patch.Audience != nil {
		set.Audience = *patch.Audience
	}
	if patch.SelectedAssetIDs != nil {
		set.SelectedAssetIDs = selection
	}
	return s.viewLocked(*set), nil
}

func (s *Store) selectionIDsLocked(value any) ([]string, error) {
	var ids []string
	switch v := value.(type) {
	case []CreativeAsset:
		for _, a := range v {
			if a.ID == "" {
				return nil, fmt.Errorf("asset without id: %w", ErrInvalidValue)
			}
			ids = append(ids, a.ID)
		}
		for _, a := range v {
			s.poolLocked(a)
		}
	case []string:
		for _, id := range v {
			if _, ok := s.poolIndex[id]; !ok {
				return nil, fmt.Errorf("asset %q: %w", id, ErrAssetNotFound)
			}
		}
		ids = v
	default:
		return nil, fmt.Errorf("selectedAssets expects assets or ids: %w", ErrInvalidValue)
	}

	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// ToggleAsset flips membership of asset in the ad set's selection and
// reports whether it ended up selected. Meant for direct clicks; bulk paths
// use EnsureSelected / EnsureDeselected.
func (s *Store) ToggleAsset(adSetID int64, asset CreativeAsset) (bool, error) {
	if asset.ID == "" {
		return false, fmt.Errorf("toggle asset without id: %w", ErrInvalidValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.adSetIndexLocked(adSetID)
	if i < 0 {
		return false, fmt.Errorf("toggle asset on ad set %d: %w", adSetID, ErrAdSetNotFound)
	}
	set := &s.adSets[i]
	for j, id := range set.SelectedAssetIDs {
		if id == asset.ID {
			set.SelectedAssetIDs = append(set.SelectedAssetIDs[:j:j], set.SelectedAssetIDs[j+1:]...)
			return false, nil
		}
	}
	s.poolLocked(asset)
	set.SelectedAssetIDs = append(set.SelectedAssetIDs, asset.ID)
	return true, nil
}

// EnsureSelected adds the given pool ids to the selection, leaving ids that
// are already selected alone. It returns how many were added.
func (s *Store) EnsureSelected(adSetID int64, assetIDs ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.adSetIndexLocked(adSetID)
	if i < 0 {
		return 0, fmt.Errorf("select assets on ad set %d: %w", adSetID, ErrAdSetNotFound)
	}
	return s.ensureSelectedLocked(i, assetIDs)
}

func (s *Store) ensureSelectedLocked(i int, assetIDs []string) (int, error) {
	for _, id := range assetIDs {
		if _, ok := s.poolIndex[id]; !ok {
			return 0, fmt.Errorf("select asset %q: %w", id, ErrAssetNotFound)
		}
	}
	set := &s.adSets[i]
	selected := make(map[string]bool, len(set.SelectedAssetIDs))
	for _, id := range set.SelectedAssetIDs {
		selected[id] = true
	}
	added := 0
	for _, id := range assetIDs {
		if selected[id] {
			continue
		}
		selected[id] = true
		set.SelectedAssetIDs = append(set.SelectedAssetIDs, id)
		added++
	}
	return added, nil
}

// EnsureDeselected removes the given ids if present and returns how many were removed.
func (s *Store) EnsureDeselected(adSetID int64, assetIDs ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.adSetIndexLocked(adSetID)
	if i < 0 {
		return 0, fmt.Errorf("deselect assets on ad set %d: %w", adSetID, ErrAdSetNotFound)
	}
	return s.ensureDeselectedLocked(i, assetIDs), nil
}

func (s *Store) ensureDeselectedLocked(i int, assetIDs []string) int {
	drop := make(map[string]bool, len(assetIDs))
	for _, id := range assetIDs {
		drop[id] = true
	}
	set := &s.adSets[i]
	kept := make([]string, 0, len(set.SelectedAssetIDs))
	for _, id := range set.SelectedAssetIDs {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	removed := len(set.SelectedAssetIDs) - len(kept)
	set.SelectedAssetIDs = kept
	return removed
}

// SelectAll selects every pool asset on the ad set.
func (s *Store) SelectAll(adSetID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.adSetIndexLocked(adSetID)
	if i < 0 {
		return 0, fmt.Errorf("select all on ad set %d: %w", adSetID, ErrAdSetNotFound)
	}
	return s.ensureSelectedLocked(i, s.poolIDsLocked())
}

func (s *Store) DeselectAll(adSetID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.adSetIndexLocked(adSetID)
	if i < 0 {
		return 0, fmt.Errorf("deselect all on ad set %d: %w", adSetID, ErrAdSetNotFound)
	}
	return s.ensureDeselectedLocked(i, s.poolIDsLocked()), nil
}

func (s *Store) poolIDsLocked() []string {
	ids := make([]string, len(s.pool))
	for i, a := range s.pool {
		ids[i] = a.ID
	}
	return ids
}

// AddUploadedAssets merges assets into the pool, dropping ids that are
// already present. It returns the assets actually added.
func (s *Store) AddUploadedAssets(assets []CreativeAsset) []CreativeAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	var added []CreativeAsset
	for _, a := range assets {
		if s.poolLocked(a) {
			added = append(added, a.clone())
		}
	}
	return added
}

// poolLocked appends a to the pool unless its id is taken.
func (s *Store) poolLocked(a CreativeAsset) bool {
	if a.ID == "" {
		return false
	}
	if _, ok := s.poolIndex[a.ID]; ok {
		return false
	}
	c := a.clone()
	c.Tags = normalizeTags(c.Tags)
	s.poolIndex[a.ID] = len(s.pool)
	s.pool = append(s.pool, c)
	return true
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || containsTag(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag adds tag to the asset. Every ad set sees the change since
// selections reference the pool entry.
func (s *Store) AddTag(assetID, tag string) error {
	tag = strings.TrimSpace(tag)
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.poolIndex[assetID]
	if !ok {
		return fmt.Errorf("tag asset %q: %w", assetID, ErrAssetNotFound)
	}
	if tag == "" || containsTag(s.pool[i].Tags, tag) {
		return nil
	}
	s.pool[i].Tags = append(s.pool[i].Tags, tag)
	return nil
}

func (s *Store) RemoveTag(assetID, tag string) error {
	tag = strings.TrimSpace(tag)
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.poolIndex[assetID]
	if !ok {
		return fmt.Errorf("untag asset %q: %w", assetID, ErrAssetNotFound)
	}
	if tag == "" {
		return nil
	}
	kept := s.pool[i].Tags[:0:0]
	for _, t := range s.pool[i].Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	s.pool[i].Tags = kept
	return nil
}

func (s *Store) Asset(id string) (CreativeAsset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.poolIndex[id]
	if !ok {
		return CreativeAsset{}, false
	}
	return s.pool[i].clone(), true
}

func (s *Store) AddCopyVariant() CopyVariant {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.newCopyVariantLocked()
	s.variants = append(s.variants, v)
	return v
}

// RemoveCopyVariant may leave zero variants; launch validation rejects that.
func (s *Store) RemoveCopyVariant(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.variants {
		if v.ID == id {
			s.variants = append(s.variants[:i:i], s.variants[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove copy variant %d: %w", id, ErrCopyVariantNotFound)
}

func (s *Store) UpdateCopyVariant(id int64, field CopyVariantField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.variants {
		if s.variants[i].ID != id {
			continue
		}
		switch field {
		case CopyVariantFieldHeadline:
			s.variants[i].Headline = value
		case CopyVariantFieldPrimaryText:
			s.variants[i].PrimaryText = value
		case CopyVariantFieldCTA:
			s.variants[i].CTA = value
		default:
			return fmt.Errorf("copy variant field %q: %w", field, ErrUnknownField)
		}
		return nil
	}
	return fmt.Errorf("update copy variant %d: %w", id, ErrCopyVariantNotFound)
}

// TotalAds is the sum over ad sets of selected assets times copy variants.
func (s *Store) TotalAds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalAds(s.adSets, len(s.variants))
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Metadata:     s.metadata,
		Pool:         make([]CreativeAsset, len(s.pool)),
		AdSets:       make([]AdSetView, len(s.adSets)),
		CopyVariants: append([]CopyVariant{}, s.variants...),
		TotalAds:     totalAds(s.adSets, len(s.variants)),
	}
	for i, a := range s.pool {
		snap.Pool[i] = a.clone()
	}
	for i, set := range s.adSets {
		snap.AdSets[i] = s.viewLocked(set)
	}
	return snap
}

func (s *Store) viewLocked(set AdSet) AdSetView {
	v := AdSetView{
		ID:       set.ID,
		Name:     set.Name,
		Budget:   set.Budget,
		Audience: set.Audience,
		Assets:   make([]CreativeAsset, 0, len(set.SelectedAssetIDs)),
	}
	for _, id := range set.SelectedAssetIDs {
		if i, ok := s.poolIndex[id]; ok {
			v.Assets = append(v.Assets, s.pool[i].clone())
		}
	}
	return v
}

func (s *Store) adSetIndexLocked(id int64) int {
	for i, set := range s.adSets {
		if set.ID == id {
			return i
		}
	}
	return -1
}
