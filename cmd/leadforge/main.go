package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/leadforge/leadforge/internal/config"
	"github.com/leadforge/leadforge/internal/enrich"
	"github.com/leadforge/leadforge/internal/export"
	"github.com/leadforge/leadforge/internal/harvest"
	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
	"github.com/leadforge/leadforge/internal/source/api"
	"github.com/leadforge/leadforge/internal/source/browser"
	"github.com/leadforge/leadforge/internal/source/synth"
	"github.com/leadforge/leadforge/internal/source/websearch"
	"github.com/leadforge/leadforge/internal/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	maxRetriesEnv, err := envInt("MAX_RETRIES", 2)
	if err != nil {
		return configError(err)
	}
	sourceTimeoutEnv, err := envDuration("SOURCE_TIMEOUT", 60*time.Second)
	if err != nil {
		return configError(err)
	}
	harvestTimeoutEnv, err := envDuration("HARVEST_TIMEOUT", 0)
	if err != nil {
		return configError(err)
	}
	rateLimitEnv, err := envFloat("RATE_LIMIT_RPS", 0)
	if err != nil {
		return configError(err)
	}
	headlessEnv, err := envBool("HEADLESS", true)
	if err != nil {
		return configError(err)
	}

	fs := flag.NewFlagSet("leadforge", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { usage(os.Stderr); fs.PrintDefaults() }

	var (
		industry    = fs.String("industry", "", "Industry or niche to search for (required)")
		location    = fs.String("location", "", "Geographic area to search in (required)")
		leadType    = fs.String("type", "business", "Lead type: business, personal or institutional")
		count       = fs.Int("count", 50, "Target number of unique leads")
		sourcesFlag = fs.String("sources", "", "Comma-separated source ids (default: all for the lead type)")
		parallel    = fs.Bool("parallel", false, "Run sources concurrently instead of one at a time")
		output      = fs.String("output", "output", "Directory for result files")
		formatFlag  = fs.String("format", "excel", "Output format: excel, csv, json, sqlite or all")
		proxy       = fs.String("proxy", "", "Proxy server for browser sources (overrides PROXY_LIST)")
		delay       = fs.Duration("delay", 500*time.Millisecond, "Pause between requests within a source")
		configPath  = fs.String("config", "", "Optional YAML config file")
		headless    = fs.Bool("headless", headlessEnv, "Run browsers headless (env: HEADLESS)")
		seed        = fs.Int64("seed", 0, "Rotation/sample seed; 0 derives one from the clock")
		timeout     = fs.Duration("timeout", harvestTimeoutEnv, "Whole-run deadline, 0 disables (env: HARVEST_TIMEOUT)")
		srcTimeout  = fs.Duration("source-timeout", sourceTimeoutEnv, "Per-source fetch timeout (env: SOURCE_TIMEOUT)")
		maxRetries  = fs.Int("max-retries", maxRetriesEnv, "Retries per source for transient failures (env: MAX_RETRIES)")
		rateLimit   = fs.Float64("rate-limit-rps", rateLimitEnv, "Global fetch rate limit (RPS), 0 disables (env: RATE_LIMIT_RPS)")
		enrichSites = fs.Bool("enrich-websites", false, "Visit lead websites to fill in missing emails")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *industry == "" || *location == "" {
		_, _ = fmt.Fprintln(os.Stderr, "both --industry and --location are required")
		return 2
	}

	category, err := lead.ParseCategory(*leadType)
	if err != nil {
		return configError(err)
	}
	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		return configError(err)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	cfg, err := config.Load(*configPath, *proxy, *delay, *headless, *seed)
	if err != nil {
		return configError(err)
	}

	reg, err := buildRegistry(ctx, cfg)
	if err != nil {
		return configError(err)
	}

	orch := harvest.New(reg, harvest.Options{
		Concurrent:    *parallel,
		MaxRetries:    *maxRetries,
		SourceTimeout: *srcTimeout,
		Timeout:       *timeout,
		RateLimitRPS:  *rateLimit,
	})

	res, err := orch.Harvest(ctx, lead.Query{
		Industry:    *industry,
		Location:    *location,
		Category:    category,
		TargetCount: *count,
		Sources:     splitList(*sourcesFlag),
	})
	if err != nil {
		return configError(err)
	}

	if *enrichSites {
		res.Records = enrich.New(enrich.Options{}).Enrich(ctx, res.Records)
	}

	exporter := &export.Exporter{
		Dir:      *output,
		Base:     fmt.Sprintf("%s_%s_leads", *industry, *location),
		Category: category,
	}
	paths, exportErr := exporter.Export(res.Records, format.Expand())

	printSummary(res, paths)

	if exportErr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "export failed: %s\n", util.RedactSecrets(exportErr.Error()))
		return 1
	}
	return 0
}

func configError(err error) int {
	_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", util.RedactSecrets(err.Error()))
	return 2
}

// buildRegistry wires every built-in source. API-backed and websearch
// sources get their credential from the environment through cfg and fall
// back to sample data when it is absent.
func buildRegistry(ctx context.Context, cfg config.Config) (*source.Registry, error) {
	reg := source.NewRegistry()

	for _, s := range browser.Sites(cfg) {
		reg.MustRegister(s)
	}

	key := func(id string) string { return cfg.Credentials[id] }
	reg.MustRegister(api.NewHunterIO(api.Config{APIKey: key("hunterio"), Seed: cfg.Seed}))
	reg.MustRegister(api.NewClearbit(api.Config{APIKey: key("clearbit"), Seed: cfg.Seed}))
	reg.MustRegister(api.NewApolloIO(api.Config{APIKey: key("apolloio"), Seed: cfg.Seed}))
	reg.MustRegister(api.NewZoomInfo(api.Config{APIKey: key("zoominfo"), Seed: cfg.Seed}))

	ws, err := websearch.New(ctx, websearch.Config{APIKey: key("websearch"), Seed: cfg.Seed})
	if err != nil {
		return nil, fmt.Errorf("websearch source: %w", err)
	}
	reg.MustRegister(ws)

	sample := func(id string, cat lead.Category, label string, gen synth.Generator) {
		desc := source.Descriptor{ID: id, Category: cat, Kind: source.KindQuery}
		reg.MustRegister(synth.New(desc, label, cfg.Seed, gen))
	}
	sample("linkedin", lead.CategoryPersonal, "LinkedIn", synth.LinkedIn)
	sample("chamber", lead.CategoryBusiness, "Chamber of Commerce", synth.ChamberOfCommerce)
	sample("government", lead.CategoryInstitutional, "Government Websites", synth.Government)
	sample("association", lead.CategoryInstitutional, "Association Directory", synth.Association)
	sample("charitynavigator", lead.CategoryInstitutional, "Charity Navigator", synth.CharityNavigator)
	sample("guidestar", lead.CategoryInstitutional, "Guidestar/Candid", synth.Guidestar)
	sample("educational", lead.CategoryInstitutional, "Educational Directory", synth.Educational)

	return reg, nil
}

func printSummary(res *harvest.Result, paths map[export.Format]string) {
	fmt.Println()
	fmt.Println("Harvest summary")
	for _, rep := range res.Sources {
		switch {
		case rep.Abandoned:
			fmt.Printf("  %-18s timed out\n", rep.ID)
		case rep.Err != nil:
			fmt.Printf("  %-18s failed: %s\n", rep.ID, util.RedactSecrets(rep.Err.Error()))
		default:
			fmt.Printf("  %-18s %d leads\n", rep.ID, rep.Count)
		}
	}
	fmt.Printf("  unique leads: %d (from %d raw)\n", len(res.Records), res.RawCount)
	for f, p := range paths {
		fmt.Printf("  wrote %-7s %s\n", f, p)
	}
	fmt.Printf("  elapsed: %s\n", res.Elapsed.Round(time.Millisecond))
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func usage(w *os.File) {
	_, _ = fmt.Fprintf(w, `leadforge: multi-source lead harvester

Usage:
  leadforge --industry <industry> --location <location> [flags]

Examples:
  leadforge --industry bakery --location "Springfield, IL" --count 30
  leadforge --industry "software" --location Austin --type personal --parallel --format all

Environment:
  HUNTER_IO_API_KEY   Hunter.io key (absent: sample data)
  CLEARBIT_API_KEY    Clearbit key (absent: sample data)
  APOLLO_IO_API_KEY   Apollo.io key (absent: sample data)
  ZOOMINFO_API_KEY    ZoomInfo key (absent: sample data)
  GEMINI_API_KEY      Gemini key for the websearch source (absent: sample data)
  PROXY_LIST          Comma-separated proxy rotation list
  CHROME_PATH         Chrome/Chromium binary for browser sources

Flags:
`)
}

func envInt(varName string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envFloat(varName string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envDuration(varName string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envBool(varName string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}
