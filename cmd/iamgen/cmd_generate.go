package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/udondan/iam-floyd-sub044/pkg"
)

var generateFlags struct {
	output   string
	pkgName  string
	fixes    string
	pagesDir string
	saveDir  string
	baseURL  string
	verify   bool
}

var generateCmd = &cobra.Command{
	Use:   "generate [service-slug...]",
	Short: "Generate the statement builder package",
	Long: `Fetches the service pages, one after the other, and writes one Go file per
service, an index.go listing every builder and an iam-index.json summary.

Without arguments every service linked from the reference index is generated.
A page that cannot be fetched aborts the run; a page that cannot be parsed is
skipped and reported.

Example:
  iamgen generate --output ./statements amazonec2 awslambda`,
	RunE: runGenerate,
}

func init() {
	flags := generateCmd.Flags()
	flags.StringVarP(&generateFlags.output, "output", "o", "", "Output directory of the generated package")
	flags.StringVarP(&generateFlags.pkgName, "package", "p", "", "Package name of the generated code")
	flags.StringVar(&generateFlags.fixes, "fixes", "", "YAML file with additional slug fixes")
	flags.StringVar(&generateFlags.pagesDir, "pages-dir", "", "Read saved pages from this directory instead of downloading")
	flags.StringVar(&generateFlags.saveDir, "save-dir", "", "Save downloaded pages to this directory")
	flags.StringVar(&generateFlags.baseURL, "base-url", "", "Base URL of the service authorization reference")
	flags.BoolVar(&generateFlags.verify, "verify", false, "Scan the written package and check every service type exists")
}

// applyGenerateFlags lets explicitly set flags win over the config file
func applyGenerateFlags(cmd *cobra.Command, config *pkg.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		config.Output.Dir = generateFlags.output
	}
	if flags.Changed("package") {
		config.Output.Package = generateFlags.pkgName
	}
	if flags.Changed("fixes") {
		config.FixesFile = generateFlags.fixes
	}
	if flags.Changed("pages-dir") {
		config.Source.PagesDir = generateFlags.pagesDir
	}
	if flags.Changed("save-dir") {
		config.Source.SaveDir = generateFlags.saveDir
	}
	if flags.Changed("base-url") {
		config.Source.BaseURL = generateFlags.baseURL
	}
	if flags.Changed("verify") {
		config.Output.Verify = generateFlags.verify
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	applyGenerateFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	fetcher := cfg.NewFetcher()

	slugs := args
	if len(slugs) == 0 {
		slugs = cfg.Source.Services
	}
	if len(slugs) == 0 {
		var err error
		if slugs, err = pkg.ListServiceSlugs(ctx, fetcher); err != nil {
			return fmt.Errorf("failed to list services: %w", err)
		}
		logger.Info("services listed", zap.Int("count", len(slugs)))
	}

	fixes, err := pkg.LoadFixRegistry(cfg.FixesFile)
	if err != nil {
		return err
	}

	generator := &pkg.Generator{
		Fetcher:  fetcher,
		Fixes:    fixes,
		Logger:   logger,
		Version:  version,
		Options:  cfg.EmitOptions(),
		Progress: logProgress,
	}
	index, diagnostics, err := generator.Run(ctx, slugs)
	if err != nil {
		return err
	}

	reporter := pkg.NewReporter(logger, diagnostics)
	if err := index.WriteIndexFiles(cfg.Output.Dir, reporter, logProgress); err != nil {
		return err
	}

	if cfg.Output.Verify {
		if err := pkg.VerifyGeneratedPackage(cfg.Output.Dir, cfg.Output.Package, index); err != nil {
			return err
		}
		logger.Info("generated package verified", zap.String("dir", cfg.Output.Dir))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d services with %d actions into %s (%d pages skipped, %d diagnostics)\n",
		index.Statistics.ServiceCount,
		index.Statistics.TotalActions,
		cfg.Output.Dir,
		index.Statistics.SkippedPages,
		diagnostics.Len())
	return nil
}

func logProgress(info pkg.ProgressInfo) {
	if info.Done {
		logger.Info(info.Phase+" finished", zap.Int("completed", info.Completed), zap.Int("total", info.Total))
		return
	}
	logger.Debug(info.Phase,
		zap.String("item", info.Item),
		zap.Int("completed", info.Completed),
		zap.Int("total", info.Total))
}
