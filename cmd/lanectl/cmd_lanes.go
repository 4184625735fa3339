package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"lane-posting-service/internal/adapters/memory"
	"lane-posting-service/internal/adapters/repositories"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/platform/obs"
	"lane-posting-service/internal/ports"
	"lane-posting-service/internal/services/generation"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	offlineSeed string
	lanesFile   string
	failFast    bool

	outDir       string
	reportPath   string
	genOverrides generation.Options
	noFillQuota  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate lanes without generating",
	Long: `Validate lanes from --lanes, the --offline seed file, or the pending
lanes in Postgres. The batch report is printed as JSON; the command fails
when any lane is invalid.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate posting CSVs for a batch of lanes",
	Long: `Select alternate city pairs for each lane, build and verify the
posting rows and finalize the batch (reference ids, lane status, audit).

With --out, chunk files of at most 499 rows are written to the directory;
otherwise the full CSV is printed to stdout.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	for _, c := range []*cobra.Command{validateCmd, generateCmd} {
		c.Flags().StringVar(&offlineSeed, "offline", "", "Seed file to use instead of Postgres")
		c.Flags().StringVar(&lanesFile, "lanes", "", "Seed-format file whose lanes are processed")
	}
	validateCmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first invalid lane")

	generateCmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for chunk files")
	generateCmd.Flags().StringVar(&reportPath, "report", "", "Write the JSON result to this file")
	generateCmd.Flags().BoolVar(&noFillQuota, "no-fill-quota", false, "Do not pad lanes to the minimum posting count")
	generateCmd.Flags().IntVar(&genOverrides.MinimumPostings, "minimum-postings", 0, "Postings per lane when filling quota")
	generateCmd.Flags().IntVar(&genOverrides.Concurrency, "concurrency", 0, "Lane tasks run at once")
	generateCmd.Flags().BoolVar(&genOverrides.SkipInvalidLanes, "skip-invalid", false, "Generate the valid lanes of a mixed batch")
	generateCmd.Flags().BoolVar(&genOverrides.DegradeOnMissingCity, "degrade", false, "Post lanes with unknown cities using padding only")
	generateCmd.Flags().BoolVar(&genOverrides.VerifyWarnOnly, "verify-warn-only", false, "Report CSV verification defects as warnings")
	generateCmd.Flags().BoolVar(&genOverrides.DryRun, "dry-run", false, "Skip lane status updates and the audit record")
}

// backend is the set of ports a lane command runs against.
type backend struct {
	cities ports.CityRepository
	rates  ports.RateRepository
	store  ports.LaneStore
	source ports.LaneSource
	lanes  []domain.Lane
	close  func()
}

func openBackend(ctx context.Context) (*backend, error) {
	if offlineSeed != "" {
		seed, err := repositories.LoadSeed(offlineSeed)
		if err != nil {
			return nil, err
		}
		store := memory.NewStore()
		store.AddCities(seed.Cities...)
		for _, m := range seed.Rates {
			store.PutRateMatrix(m)
		}
		for _, l := range seed.Lanes {
			store.PutLane(l)
		}
		return &backend{cities: store, rates: store, store: store, source: store, close: func() {}}, nil
	}

	conn, err := openDB(ctx)
	if err != nil {
		return nil, err
	}
	lanes := repositories.NewPostgresLaneRepository(conn)
	return &backend{
		cities: repositories.NewPostgresCityRepository(conn),
		rates:  repositories.NewPostgresRateRepository(conn),
		store:  lanes,
		source: lanes,
		close:  func() { _ = conn.Close() },
	}, nil
}

// selectLanes returns the lanes of --lanes, or every pending lane.
func (b *backend) selectLanes(ctx context.Context) ([]domain.Lane, error) {
	if lanesFile != "" {
		seed, err := repositories.LoadSeed(lanesFile)
		if err != nil {
			return nil, err
		}
		return seed.Lanes, nil
	}
	lanes, err := b.source.ListLanesByStatus(ctx, domain.LaneStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending lanes: %w", err)
	}
	return lanes, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	be, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer be.close()

	lanes, err := be.selectLanes(ctx)
	if err != nil {
		return err
	}

	orch := generation.NewOrchestrator(be.cities, be.rates, be.store, cfg.Scoring, obs.NewLogRecorder(logger))
	report := orch.ValidateBatch(ctx, lanes, failFast)

	if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if !report.Valid {
		return fmt.Errorf("%d of %d lane(s) invalid", report.InvalidCount, len(lanes))
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	be, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer be.close()

	lanes, err := be.selectLanes(ctx)
	if err != nil {
		return err
	}

	opts := generationOptions()
	orch := generation.NewOrchestrator(be.cities, be.rates, be.store, cfg.Scoring, obs.NewLogRecorder(logger))
	res, genErr := orch.Generate(ctx, lanes, opts)

	if reportPath != "" && res != nil {
		if err := writeReport(reportPath, res); err != nil {
			return err
		}
	}
	if genErr != nil {
		return genErr
	}

	for _, w := range res.Warnings {
		logger.Warn(w)
	}

	if outDir == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), res.CSV)
		return err
	}

	files, err := writeChunks(outDir, res)
	if err != nil {
		return err
	}
	logger.Info("batch generated",
		zap.String("batch_id", res.BatchID),
		zap.Int("lanes", res.Statistics.SuccessfulLanes),
		zap.Int("rows", res.Statistics.TotalRows),
		zap.Strings("files", files),
	)
	return nil
}

// generationOptions layers command flags over the configured defaults.
func generationOptions() generation.Options {
	opts := cfg.Generation
	if noFillQuota {
		opts.FillQuota = false
	}
	if genOverrides.MinimumPostings > 0 {
		opts.MinimumPostings = genOverrides.MinimumPostings
	}
	if genOverrides.Concurrency > 0 {
		opts.Concurrency = genOverrides.Concurrency
	}
	opts.SkipInvalidLanes = opts.SkipInvalidLanes || genOverrides.SkipInvalidLanes
	opts.DegradeOnMissingCity = opts.DegradeOnMissingCity || genOverrides.DegradeOnMissingCity
	opts.VerifyWarnOnly = opts.VerifyWarnOnly || genOverrides.VerifyWarnOnly
	opts.DryRun = opts.DryRun || genOverrides.DryRun
	return opts
}

func writeChunks(dir string, res *generation.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("write chunks: create %q: %w", dir, err)
	}

	prefix := res.BatchID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}

	files := make([]string, 0, len(res.Chunks))
	for i, chunk := range res.Chunks {
		name := filepath.Join(dir, fmt.Sprintf("postings-%s-%03d.csv", prefix, i+1))
		if err := os.WriteFile(name, []byte(chunk+"\r\n"), 0o644); err != nil {
			return nil, fmt.Errorf("write chunks: %w", err)
		}
		files = append(files, name)
	}
	return files, nil
}

func writeReport(path string, res *generation.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	defer f.Close()

	// Rows are already in the chunk files.
	trimmed := *res
	trimmed.CSV = ""
	trimmed.Chunks = nil
	return writeJSON(f, trimmed)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
