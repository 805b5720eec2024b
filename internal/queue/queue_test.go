package queue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adbuilder/internal/builder"
)

func sized(id string, w, h int) builder.CreativeAsset {
	return builder.CreativeAsset{ID: id, Name: id + ".png", Type: builder.AssetTypeImage, Width: &w, Height: &h}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		asset builder.CreativeAsset
		want  Group
	}{
		{"square", sized("a", 1080, 1080), GroupSquare},
		{"portrait", sized("b", 1080, 1350), GroupPortrait},
		{"story", sized("c", 1080, 1920), GroupStory},
		{"landscape", sized("d", 1920, 1080), GroupLandscape},
		{"odd ratio", sized("e", 1000, 300), GroupOther},
		{"zero height", sized("f", 1000, 0), GroupOther},
		{"missing dimensions", builder.CreativeAsset{ID: "g"}, GroupOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.asset))
		})
	}
}

func TestGroupAssetsOmitsEmptyGroupsAndKeepsOrder(t *testing.T) {
	buckets := GroupAssets([]builder.CreativeAsset{
		sized("l1", 1920, 1080),
		sized("s1", 500, 500),
		{ID: "x"},
		sized("s2", 1080, 1080),
	})
	require.Len(t, buckets, 3)
	require.Equal(t, GroupSquare, buckets[0].Group)
	require.Equal(t, "s1", buckets[0].Assets[0].ID)
	require.Equal(t, "s2", buckets[0].Assets[1].ID)
	require.Equal(t, GroupLandscape, buckets[1].Group)
	require.Equal(t, GroupOther, buckets[2].Group)
}

func TestSuggestMatchesFirstWordOrFallsBackToAll(t *testing.T) {
	adSets := []builder.AdSetView{
		{ID: 1, Name: "Feed 1:1"},
		{ID: 2, Name: "Stories 9:16"},
		{ID: 3, Name: "Prospecting"},
	}
	buckets := []Bucket{
		{Group: GroupSquare, Assets: []builder.CreativeAsset{sized("a", 1, 1)}},
		{Group: GroupStory, Assets: []builder.CreativeAsset{sized("b", 9, 16)}},
		{Group: GroupLandscape, Assets: []builder.CreativeAsset{sized("c", 16, 9)}},
		{Group: GroupOther, Assets: []builder.CreativeAsset{{ID: "d"}}},
	}
	got := Suggest(buckets, adSets)
	require.Equal(t, []int64{1}, got[GroupSquare])
	require.Equal(t, []int64{2}, got[GroupStory])
	require.Equal(t, []int64{1, 2, 3}, got[GroupLandscape])
	require.Equal(t, []int64{1, 2, 3}, got[GroupOther])
}

func newStore(t *testing.T, assets ...builder.CreativeAsset) (*builder.Store, builder.Snapshot) {
	t.Helper()
	s := builder.NewStore(assets)
	require.NoError(t, s.UpdateAdSet(s.Snapshot().AdSets[0].ID, builder.AdSetFieldName, "Square feed 1:1"))
	second := s.AddAdSet()
	require.NoError(t, s.UpdateAdSet(second.ID, builder.AdSetFieldName, "Reels 9:16"))
	return s, s.Snapshot()
}

func TestPreviewUnionsGroupsPerAdSet(t *testing.T) {
	_, snap := newStore(t, sized("sq", 1080, 1080), sized("st", 1080, 1920))
	p := NewPlanner()
	st := p.Open(snap)
	require.True(t, st.Open)

	first, second := snap.AdSets[0].ID, snap.AdSets[1].ID
	require.Equal(t, []int64{first}, st.Targets[GroupSquare])
	require.Equal(t, []int64{second}, st.Targets[GroupStory])

	require.NoError(t, p.Toggle(GroupStory, first))
	preview := p.Preview()
	require.Len(t, preview, 2)
	require.Equal(t, first, preview[0].AdSetID)
	require.Len(t, preview[0].Assets, 2)
	require.Equal(t, second, preview[1].AdSetID)
	require.Len(t, preview[1].Assets, 1)
}

func TestDistributeKeepsAlreadySelectedAssets(t *testing.T) {
	sq := sized("sq", 1080, 1080)
	s, snap := newStore(t, sq)
	first := snap.AdSets[0].ID
	_, err := s.ToggleAsset(first, sq)
	require.NoError(t, err)

	p := NewPlanner()
	p.Open(s.Snapshot())
	res, err := p.Distribute(s)
	require.NoError(t, err)
	require.Equal(t, 1, res.AdSets)
	require.Equal(t, 0, res.AssetsAdded)

	after := s.Snapshot()
	require.Len(t, after.AdSets[0].Assets, 1, "distribute must not deselect an asset that was already selected")
	require.False(t, p.State().Open, "planner clears itself after distribute")
}

func TestDistributeSkipsRemovedAdSets(t *testing.T) {
	s, snap := newStore(t, sized("st", 1080, 1920))
	p := NewPlanner()
	p.Open(snap)
	require.NoError(t, s.RemoveAdSet(snap.AdSets[1].ID))

	res, err := p.Distribute(s)
	require.NoError(t, err)
	require.Equal(t, []int64{snap.AdSets[1].ID}, res.SkippedAdSets)
	require.Equal(t, 0, res.AdSets)
}

func TestPlannerRequiresOpen(t *testing.T) {
	p := NewPlanner()
	require.ErrorIs(t, p.Toggle(GroupSquare, 1), ErrNotOpen)
	_, err := p.Distribute(builder.NewStore(nil))
	require.ErrorIs(t, err, ErrNotOpen)
	require.Nil(t, p.Preview())
}

func TestSetTargetsValidates(t *testing.T) {
	_, snap := newStore(t, sized("sq", 10, 10))
	p := NewPlanner()
	p.Open(snap)
	require.ErrorIs(t, p.SetTargets(GroupStory, nil), ErrUnknownGroup)
	require.ErrorIs(t, p.SetTargets(GroupSquare, []int64{42}), ErrUnknownAdSet)
	require.NoError(t, p.SetTargets(GroupSquare, []int64{}))
	require.Empty(t, p.Preview())
}
