package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"adbuilder/internal/builder"
	"adbuilder/internal/config"
	"adbuilder/internal/db"
	"adbuilder/internal/interfaces"
	"adbuilder/internal/launch"
	"adbuilder/internal/middleware"
	"adbuilder/internal/models"
	"adbuilder/internal/repository"
	"adbuilder/internal/services"
)

var (
	dryRun      bool
	launchMode  string
	tenantFlag  string
	userFlag    string
	compensate  bool
	showRecords bool
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Write the plan out as draft campaign records",
	Long: `Launches the plan through the same pipeline as the API. With --dry-run
nothing touches the database; the records are numbered in memory and listed.`,
	Args: cobra.NoArgs,
	RunE: runLaunch,
}

func init() {
	launchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not write to the database")
	launchCmd.Flags().StringVar(&launchMode, "mode", string(launch.ModeFlattened), "flattened or per_ad_set")
	launchCmd.Flags().StringVar(&tenantFlag, "tenant", "", "advertiser id to launch for")
	launchCmd.Flags().StringVar(&userFlag, "user", "", "user id whose advertiser is used when --tenant is empty")
	launchCmd.Flags().BoolVar(&compensate, "compensate", false, "delete written records if the launch fails")
	launchCmd.Flags().BoolVar(&showRecords, "records", false, "list every written record")
}

// recorderStore numbers records in memory for dry runs.
type recorderStore struct {
	mu     sync.Mutex
	counts map[interfaces.Entity]int
}

func newRecorderStore() *recorderStore {
	return &recorderStore{counts: make(map[interfaces.Entity]int)}
}

func (s *recorderStore) id(e interfaces.Entity) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[e]++
	return fmt.Sprintf("dry-%s-%d", e, s.counts[e])
}

func (s *recorderStore) CreateCampaign(_ context.Context, c *models.Campaign) error {
	c.ID = s.id(interfaces.EntityCampaign)
	return nil
}

func (s *recorderStore) CreateAdSet(_ context.Context, a *models.AdSet) error {
	a.ID = s.id(interfaces.EntityAdSet)
	return nil
}

func (s *recorderStore) CreateAsset(_ context.Context, a *models.Asset) error {
	a.ID = s.id(interfaces.EntityAsset)
	return nil
}

func (s *recorderStore) CreateAdVariant(_ context.Context, v *models.AdVariant) error {
	v.ID = s.id(interfaces.EntityAdVariant)
	return nil
}

type fixedTenant string

func (t fixedTenant) ResolveTenant(context.Context) (string, error) {
	return string(t), nil
}

func runLaunch(cmd *cobra.Command, args []string) error {
	store, err := loadPlan(planPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx = middleware.WithIdentity(ctx, userFlag, "", tenantFlag)

	deps := launch.Deps{
		Feedback: services.NewLogFeedback(log),
		Notifier: services.NewLogNotifier(log),
		Log:      log,
	}
	if dryRun {
		tenant := tenantFlag
		if tenant == "" {
			tenant = "dry-run"
		}
		deps.Tenants = fixedTenant(tenant)
		deps.Store = newRecorderStore()
	} else {
		if tenantFlag == "" && userFlag == "" {
			return errors.New("--tenant or --user is required unless --dry-run is set")
		}
		cfg := config.Load()
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		deps.Tenants = repository.NewTenantResolver(database.DB)
		deps.Store = repository.NewRecordRepository(database.DB)
	}

	pipeline := launch.NewPipeline(deps, launch.Options{
		Mode:       launch.ParseMode(launchMode),
		Compensate: compensate,
	})
	defer pipeline.Wait()

	return launchPlan(ctx, cmd.OutOrStdout(), pipeline, store)
}

// planSession launches a plan store. The plan file stays the source of
// truth, so nothing is reset afterwards.
type planSession struct {
	*builder.Store
}

func (planSession) ResetAfterLaunch() {}

func launchPlan(ctx context.Context, out io.Writer, pipeline *launch.Pipeline, store *builder.Store) error {
	res, err := pipeline.LaunchSession(ctx, planSession{store}, func(p launch.Progress) {
		if p.Step != "" {
			fmt.Fprintf(out, "[%5.1f%%] %s\n", p.Percent, p.Step)
		}
	})
	if err != nil {
		if res != nil && res.Compensated {
			fmt.Fprintln(out, "written records were removed")
		}
		return err
	}

	fmt.Fprintf(out, "campaign %s launched with %d ads (%d records)\n", res.CampaignID, res.AdsCreated, len(res.Created))
	if showRecords {
		for _, rec := range res.Created {
			fmt.Fprintf(out, "  %-10s %s\n", rec.Entity, rec.ID)
		}
	}
	return nil
}
