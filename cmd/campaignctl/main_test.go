package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"adbuilder/internal/launch"
)

const samplePlan = `
campaign:
  name: Spring Sale
  objective: sales
  budget: "500"
assets:
  - {id: drive-1, name: square.png, type: image, width: 1080, height: 1080}
  - {id: drive-2, name: story.mp4, type: video, width: 1080, height: 1920}
ad_sets:
  - name: "{{campaign.name}} #{{adSet.index}}"
    assets: [drive-1, drive-2]
  - name: Stories
    budget: "100"
    assets: [drive-2]
copy_variants:
  - headline: Save now
  - headline: Last chance
    cta: Shop Now
`

func writePlan(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	planPath = path
	t.Cleanup(func() { planPath = "campaign.yaml" })
}

func testCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestParsePlanReplaysOntoStore(t *testing.T) {
	store, err := parsePlan([]byte(samplePlan))
	require.NoError(t, err)

	snap := store.Snapshot()
	require.Len(t, snap.AdSets, 2)
	require.Len(t, snap.CopyVariants, 2)
	require.Equal(t, "Stories", snap.AdSets[1].Name)
	require.Equal(t, "Shop Now", snap.CopyVariants[1].CTA)
	require.Equal(t, 6, snap.TotalAds)
}

func TestParsePlanRejectsUnknownAsset(t *testing.T) {
	_, err := parsePlan([]byte("ad_sets:\n  - assets: [missing]\n"))
	require.ErrorContains(t, err, "ad set 1")
}

func TestRenderCommand(t *testing.T) {
	writePlan(t, samplePlan)
	cmd, out := testCmd()
	renderAdSet = 1

	require.NoError(t, runRender(cmd, []string{"{{campaign.name}} / {{adSet.first_asset_name}} / {{nope}}"}))
	require.Contains(t, out.String(), "Spring Sale / square / {{nope}}")
	require.Contains(t, out.String(), "unresolved: nope")

	renderAdSet = 5
	require.Error(t, runRender(cmd, []string{"x"}))
	renderAdSet = 1
}

func TestPlanCommandSummarises(t *testing.T) {
	writePlan(t, samplePlan)
	cmd, out := testCmd()

	require.NoError(t, runPlan(cmd, nil))
	require.Contains(t, out.String(), `ad set 1 "Spring Sale #1": 2 assets`)
	require.Contains(t, out.String(), "total ads: 6")
	require.Contains(t, out.String(), "1:1 (Square): 1 assets")
}

func TestPlanCommandRejectsIncompletePlan(t *testing.T) {
	writePlan(t, "campaign:\n  name: Only a name\n")
	cmd, _ := testCmd()
	require.ErrorContains(t, runPlan(cmd, nil), "not launchable")
}

func TestDryRunLaunch(t *testing.T) {
	writePlan(t, samplePlan)
	cmd, out := testCmd()
	dryRun, showRecords = true, true
	launchMode = string(launch.ModePerAdSet)
	t.Cleanup(func() {
		dryRun, showRecords = false, false
		launchMode = string(launch.ModeFlattened)
	})

	require.NoError(t, runLaunch(cmd, nil))
	text := out.String()
	require.Contains(t, text, "campaign dry-campaign-1 launched with 6 ads")
	require.Contains(t, text, "100.0%")
	require.Equal(t, 6, strings.Count(text, "ad_variant "))
}
