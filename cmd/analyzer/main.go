package main

import (
	"encoding/json"
	"fmt"
	"os"

	"golang-portfolio-analyzer/internal/analyzer/config"
	"golang-portfolio-analyzer/internal/analyzer/repository"
	"golang-portfolio-analyzer/internal/analyzer/service"
	"golang-portfolio-analyzer/internal/holdings"
	"golang-portfolio-analyzer/pkg/logger"
	"golang-portfolio-analyzer/pkg/telegram"

	"github.com/spf13/cobra"
)

var (
	configPath string
	csvFiles   []string
	broker     string
	profile    string
	forceFetch bool
)

// deps bundles everything the CLI commands share.
type deps struct {
	cfg          *config.Config
	log          *logger.Logger
	artifactRepo repository.ArtifactRepository
	technicalSvc service.TechnicalAnalysisService
	scorerSvc    service.ScorerService
	batchSvc     service.BatchScorerService
}

// buildDeps wires the offline pipeline. The CLI runs without postgres or
// redis; score history and the stream consumer need the scoring service.
func buildDeps() (*deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	artifactRepo, err := repository.NewArtifactRepository(cfg, appLogger)
	if err != nil {
		return nil, err
	}
	yahooRepo := repository.NewYahooFinanceRepository(cfg, appLogger)
	technicalSvc := service.NewTechnicalAnalysisService(cfg, appLogger, yahooRepo, artifactRepo)

	telegramNotifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
	}

	scorerSvc := service.NewScorerService(cfg, appLogger, nil, technicalSvc, artifactRepo, nil, telegramNotifier)
	batchSvc := service.NewBatchScorerService(cfg, appLogger, scorerSvc, artifactRepo, telegramNotifier)

	return &deps{
		cfg:          cfg,
		log:          appLogger,
		artifactRepo: artifactRepo,
		technicalSvc: technicalSvc,
		scorerSvc:    scorerSvc,
		batchSvc:     batchSvc,
	}, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

var importHoldingsCmd = &cobra.Command{
	Use:   "import-holdings",
	Short: "Import broker CSV exports into the holdings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps()
		if err != nil {
			return err
		}
		if len(csvFiles) == 0 {
			return fmt.Errorf("at least one --file is required")
		}

		var all []holdings.Holding
		for _, path := range csvFiles {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			hs, err := holdings.ParseCSV(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
			detected := "unknown"
			if len(hs) > 0 && hs[0].Broker != "" {
				detected = hs[0].Broker
			}
			fmt.Printf("%s: %d holdings (%s format)\n", path, len(hs), detected)
			all = append(all, hs...)
		}

		if err := d.artifactRepo.SaveHoldings(cmd.Context(), all); err != nil {
			return err
		}
		fmt.Printf("Imported %d holdings\n", len(all))
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <symbol>",
	Short: "Fetch and cache daily price history for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps()
		if err != nil {
			return err
		}
		symbolYF := holdings.YFSymbol(holdings.NormalizeSymbol(args[0]))
		data, err := d.technicalSvc.GetPriceHistory(cmd.Context(), symbolYF, forceFetch)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d candles, fetched at %s\n", data.Symbol, len(data.Candles), data.FetchedAt.Format("2006-01-02 15:04"))
		return nil
	},
}

var technicalsCmd = &cobra.Command{
	Use:   "technicals <symbol>",
	Short: "Compute indicators and the technical score for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps()
		if err != nil {
			return err
		}
		symbolYF := holdings.YFSymbol(holdings.NormalizeSymbol(args[0]))
		artifact, err := d.technicalSvc.Analyze(cmd.Context(), symbolYF)
		if err != nil {
			return err
		}
		return printJSON(artifact)
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <symbol>",
	Short: "Score one stock from its analysis artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps()
		if err != nil {
			return err
		}
		scored, err := d.scorerSvc.Score(cmd.Context(), args[0], broker, profile)
		if err != nil {
			return err
		}
		return printJSON(scored)
	},
}

var scoreAllCmd = &cobra.Command{
	Use:   "score-all",
	Short: "Score every holding in the portfolio",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps()
		if err != nil {
			return err
		}
		report, err := d.batchSvc.ScoreAll(cmd.Context(), profile)
		if err != nil {
			return err
		}
		if err := printJSON(report); err != nil {
			return err
		}
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d of %d holdings failed to score", len(report.Failed), len(report.Failed)+report.HoldingCount)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the portfolio report from saved scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps()
		if err != nil {
			return err
		}
		report, err := d.batchSvc.BuildReport(cmd.Context(), profile)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "analyzer",
		Short: "Portfolio scoring pipeline CLI",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-analyzer.yaml", "Path to the configuration file")

	importHoldingsCmd.Flags().StringSliceVarP(&csvFiles, "file", "f", nil, "Broker CSV export, repeatable")
	fetchCmd.Flags().BoolVar(&forceFetch, "force", false, "Ignore the cache freshness window")
	scoreCmd.Flags().StringVar(&broker, "broker", "", "Broker the holding belongs to")

	for _, c := range []*cobra.Command{scoreCmd, scoreAllCmd, reportCmd} {
		c.Flags().StringVar(&profile, "profile", "", "Scoring profile (default, watchlist_swing, portfolio_long_term)")
	}

	rootCmd.AddCommand(importHoldingsCmd, fetchCmd, technicalsCmd, scoreCmd, scoreAllCmd, reportCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analyzer CLI: %s\n", err)
		os.Exit(1)
	}
}
