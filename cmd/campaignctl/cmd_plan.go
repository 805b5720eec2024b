package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"adbuilder/internal/launch"
	"adbuilder/internal/queue"
	"adbuilder/internal/tokens"
)

var renderAdSet int

var renderCmd = &cobra.Command{
	Use:   "render TEMPLATE",
	Short: "Resolve name tokens against one ad set of the plan",
	Long: `Renders a name template such as "{{campaign.name}} - {{adSet.index}}".
Unknown tokens are left in place and listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Validate the plan and show what a launch would write",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	renderCmd.Flags().IntVar(&renderAdSet, "ad-set", 1, "1-based ad set position")
}

func runRender(cmd *cobra.Command, args []string) error {
	store, err := loadPlan(planPath)
	if err != nil {
		return err
	}
	snap := store.Snapshot()
	if renderAdSet < 1 || renderAdSet > len(snap.AdSets) {
		return fmt.Errorf("ad set %d out of range (plan has %d)", renderAdSet, len(snap.AdSets))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tokens.Render(args[0], snap.TokenContext(renderAdSet-1, time.Now())))
	if unresolved := tokens.Unresolved(args[0]); len(unresolved) > 0 {
		fmt.Fprintf(out, "unresolved: %s\n", strings.Join(unresolved, ", "))
		fmt.Fprintf(out, "known: %s\n", strings.Join(tokens.Keys(), ", "))
	}
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	store, err := loadPlan(planPath)
	if err != nil {
		return err
	}
	snap := store.Snapshot()
	out := cmd.OutOrStdout()

	if err := launch.Validate(snap); err != nil {
		return fmt.Errorf("plan is not launchable: %w", err)
	}

	now := time.Now()
	fmt.Fprintf(out, "campaign %q (%s, budget %s)\n", snap.Metadata.Name, snap.Metadata.Objective, snap.Metadata.Budget)
	for i, set := range snap.AdSets {
		fmt.Fprintf(out, "  ad set %d %q: %d assets\n", i+1, snap.RenderAdSetName(i, now), len(set.Assets))
	}
	fmt.Fprintf(out, "copy variants: %d\n", len(snap.CopyVariants))
	fmt.Fprintf(out, "total ads: %d\n", snap.TotalAds)

	buckets := queue.GroupAssets(snap.Pool)
	suggested := queue.Suggest(buckets, snap.AdSets)
	fmt.Fprintln(out, "asset groups:")
	for _, b := range buckets {
		fmt.Fprintf(out, "  %s: %d assets, suggested ad sets %v\n", b.Group, len(b.Assets), suggested[b.Group])
	}
	return nil
}
