package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/pflag"

	"github.com/awork-io/sting/pkg/analysis"
	"github.com/awork-io/sting/pkg/config"
	"github.com/awork-io/sting/pkg/cycles"
	"github.com/awork-io/sting/pkg/entity"
	"github.com/awork-io/sting/pkg/git"
	"github.com/awork-io/sting/pkg/graph"
	"github.com/awork-io/sting/pkg/logging"
	"github.com/awork-io/sting/pkg/output"
	"github.com/awork-io/sting/pkg/rank"
	"github.com/awork-io/sting/pkg/scanner"
	"github.com/awork-io/sting/pkg/watcher"
	"github.com/awork-io/sting/pkg/web"
)

const usage = `Usage: sting <command> [flags]

Commands:
  query-all   List every known entity with its dependencies
  query       Show entities matching a name: sting query <name>
  unused      List declared entities that nothing imports
  graph       Print the dependency graph as D3-compatible JSON
  affected    Show entities affected by changes since a git ref
  chain       Find dependency chains between two entity names
  cycles      Detect circular dependencies
  rank        Rank entities by dependency count
  serve       Serve the interactive graph UI

Common flags:
  --root string   Monorepo root directory (default ".")
  -v, --verbose   Increase log verbosity (-v info, -vv debug)

Run 'sting <command> --help' for command-specific flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	f := pflag.NewFlagSet(command, pflag.ExitOnError)
	f.String("root", ".", "monorepo root directory")
	f.CountP("verbose", "v", "increase log verbosity")

	var (
		entityTypes []string
		showDeps    bool

		baseRef    string
		transitive bool
		pathsOnly  bool
		testsOnly  bool
		project    string

		start    string
		end      string
		shortest bool

		by string
	)

	switch command {
	case "query-all", "query":
		f.BoolVar(&showDeps, "deps", true, "show dependencies per entity")
	case "graph", "rank":
		f.StringSliceVar(&entityTypes, "entity-type", nil, "restrict to entity types (class, service, ...)")
		if command == "rank" {
			f.StringVar(&by, "by", "deps", "ranking criterion (deps)")
		}
	case "affected":
		f.StringVar(&baseRef, "base", "", "git reference to diff against (required)")
		f.BoolVar(&transitive, "transitive", false, "include transitive consumers")
		f.BoolVar(&pathsOnly, "paths", false, "print only affected directories")
		f.BoolVar(&testsOnly, "tests", false, "print only related test files")
		f.StringVar(&project, "project", "", "restrict to one area: web, mobile or libs")
	case "chain":
		f.StringVar(&start, "start", "", "name of the start entity (required)")
		f.StringVar(&end, "end", "", "name of the end entity (required)")
		f.BoolVar(&shortest, "shortest", false, "report only the shortest chain per pair")
		f.Int("max-paths", 100, "stop after this many chains")
		f.Int("max-depth", 10, "maximum chain length in hops")
	case "cycles":
		f.Int("max-cycles", 100, "stop after this many cycles")
		f.Int("max-depth", 10, "maximum cycle length in edges")
	case "serve":
		f.Int("port", 8080, "port for the web server")
		f.Bool("watch", false, "re-analyze when source files change")
		f.Bool("open", true, "open the browser after startup")
	case "unused":
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}

	if err := f.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(f)
	if err != nil {
		return err
	}
	logging.SetLevel(logging.LevelFromVerbosity(cfg.VerboseCnt))

	sc := scanner.New()
	if len(cfg.SkipDirectories) > 0 {
		sc.SkipDirectories = cfg.SkipDirectories
	}
	if len(cfg.SkipFileSuffixes) > 0 {
		sc.SkipFileSuffixes = cfg.SkipFileSuffixes
	}

	opts := analysis.Options{Root: cfg.Root, Subdirs: cfg.Subdirs, Scanner: sc}

	switch command {
	case "query-all":
		return cmdQueryAll(opts, showDeps)
	case "query":
		if f.NArg() < 1 {
			return fmt.Errorf("query requires an entity name")
		}
		return cmdQuery(opts, f.Arg(0), showDeps)
	case "unused":
		return cmdUnused(opts)
	case "graph":
		return cmdGraph(opts, entityTypes)
	case "affected":
		if baseRef == "" {
			return fmt.Errorf("affected requires --base=<ref>")
		}
		return cmdAffected(opts, baseRef, transitive, pathsOnly, testsOnly, project)
	case "chain":
		if start == "" || end == "" {
			return fmt.Errorf("chain requires --start and --end")
		}
		return cmdChain(opts, start, end, shortest, cfg.MaxPaths, cfg.MaxDepth)
	case "cycles":
		return cmdCycles(opts, cfg.MaxCycles, cfg.MaxDepth)
	case "rank":
		if by != "deps" {
			return fmt.Errorf("unsupported ranking criterion %q (only deps)", by)
		}
		return cmdRank(opts, entityTypes)
	case "serve":
		return cmdServe(opts, cfg)
	}
	return nil
}

func parseKinds(names []string) ([]entity.Kind, error) {
	var kinds []entity.Kind
	for _, name := range names {
		kind, err := entity.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func cmdQueryAll(opts analysis.Options, showDeps bool) error {
	result, err := analysis.Run(opts)
	if err != nil {
		return err
	}

	entities := make([]*entity.Entity, 0, len(result.Table))
	for _, id := range result.Table.SortedIDs() {
		entities = append(entities, result.Table[id])
	}
	output.PrintEntityList("All entities", entities, true, showDeps)
	return nil
}

func cmdQuery(opts analysis.Options, name string, showDeps bool) error {
	result, err := analysis.Run(opts)
	if err != nil {
		return err
	}

	matches := result.Table.ByName(name)
	if len(matches) == 0 {
		fmt.Printf("No entity named %q found.\n", name)
		return nil
	}
	output.PrintEntityList(fmt.Sprintf("Entities named %q", name), matches, true, showDeps)
	return nil
}

func cmdUnused(opts analysis.Options) error {
	result, err := analysis.Run(opts)
	if err != nil {
		return err
	}

	output.PrintEntityList("Unused entities", result.Table.Unused(), false, false)
	return nil
}

func cmdGraph(opts analysis.Options, entityTypes []string) error {
	kinds, err := parseKinds(entityTypes)
	if err != nil {
		return err
	}

	result, err := analysis.Run(opts)
	if err != nil {
		return err
	}

	g := graph.Build(result.Table.FilterKinds(kinds))
	out, err := g.JSON()
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func cmdAffected(opts analysis.Options, baseRef string, transitive, pathsOnly, testsOnly bool, projectName string) error {
	if pathsOnly && testsOnly {
		return fmt.Errorf("--paths and --tests are mutually exclusive")
	}
	project, ok := analysis.ParseProject(projectName)
	if !ok {
		return fmt.Errorf("unknown project %q (known: web, mobile, libs)", projectName)
	}

	result, err := analysis.Run(opts)
	if err != nil {
		return err
	}

	changed, err := git.ChangedFiles(result.Root, baseRef)
	if err != nil {
		return err
	}

	g := graph.Build(result.Table)
	report := analysis.Affected(result, g, changed, transitive, project)

	switch {
	case pathsOnly:
		for _, dir := range report.Dirs() {
			fmt.Println(dir)
		}
	case testsOnly:
		for _, test := range report.TestFiles() {
			fmt.Println(test)
		}
	default:
		output.PrintAffectedReport(report, baseRef)
	}
	return nil
}

func cmdChain(opts analysis.Options, start, end string, shortest bool, maxPaths, maxDepth int) error {
	result, err := analysis.Run(opts)
	if err != nil {
		return err
	}

	g := graph.Build(result.Table)
	chains, err := analysis.Chains(g, start, end, shortest, maxPaths, maxDepth)
	if err != nil {
		return err
	}

	output.PrintChains(g, chains, start, end)
	return nil
}

func cmdCycles(opts analysis.Options, maxCycles, maxDepth int) error {
	result, err := analysis.Run(opts)
	if err != nil {
		return err
	}

	g := graph.Build(result.Table)
	found, truncated := cycles.Find(g, maxCycles, maxDepth)
	output.PrintCycles(g, found, truncated)
	return nil
}

func cmdRank(opts analysis.Options, entityTypes []string) error {
	kinds, err := parseKinds(entityTypes)
	if err != nil {
		return err
	}

	result, err := analysis.Run(opts)
	if err != nil {
		return err
	}

	g := graph.Build(result.Table.FilterKinds(kinds))
	output.PrintRanking(rank.ByDeps(g))
	return nil
}

func cmdServe(opts analysis.Options, cfg *config.Config) error {
	server := web.NewServer(cfg.MaxCycles, cfg.MaxDepth)

	analyze := func() error {
		server.PublishAnalysisStatus("scanning", "Scanning source files...", 1, 3)
		result, err := analysis.Run(opts)
		if err != nil {
			return err
		}

		server.PublishAnalysisStatus("building_graph", "Building dependency graph...", 2, 3)
		g := graph.Build(result.Table)
		server.SetAnalysis(result.Table, g)

		server.PublishAnalysisStatus("ready", "Analysis complete", 3, 3)
		server.PublishEntityGraph("graph_data", true)
		return nil
	}

	if err := analyze(); err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d", cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Port)
	}()

	if cfg.Watch {
		if err := startWatch(opts, cfg, analyze); err != nil {
			logging.Warn("watch mode unavailable", "error", err)
		}
	}

	if cfg.OpenBrowser {
		time.Sleep(500 * time.Millisecond)
		openBrowser(url)
	}

	return <-errCh
}

// startWatch wires the file watcher through the debouncer into re-analysis.
func startWatch(opts analysis.Options, cfg *config.Config, analyze func() error) error {
	subdirs := cfg.Subdirs
	if len(subdirs) == 0 {
		subdirs = analysis.DefaultSubdirs
	}
	roots := make([]string, 0, len(subdirs))
	for _, subdir := range subdirs {
		roots = append(roots, filepath.Join(opts.Root, subdir))
	}

	fw, err := watcher.NewFileWatcher(roots, opts.Scanner.SkipDirectories)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), 250*time.Millisecond, 2*time.Second)
	debouncer.Start(ctx)

	go func() {
		for event := range debouncer.Output() {
			logging.Info("source files changed, re-analyzing", "paths", len(event.Paths))
			if err := analyze(); err != nil {
				logging.Error("re-analysis failed", "error", err)
			}
		}
	}()

	return nil
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on this platform", "platform", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
