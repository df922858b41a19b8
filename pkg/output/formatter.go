package output

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/awork-io/sting/pkg/analysis"
	"github.com/awork-io/sting/pkg/cycles"
	"github.com/awork-io/sting/pkg/entity"
	"github.com/awork-io/sting/pkg/graph"
	"github.com/awork-io/sting/pkg/rank"
)

// PrintEntity prints one entity in the standard multi-line record format.
func PrintEntity(e *entity.Entity, showID, showDeps bool) {
	cyan := color.New(color.FgCyan)

	if showID {
		fmt.Printf("ID: %s\n", e.ID)
	}
	fmt.Printf("Name: %s\n", e.Name)
	fmt.Printf("Type: %s\n", e.Kind)
	cyan.Printf("File: %s\n", e.FilePath)
	if showDeps && len(e.Imports) > 0 {
		fmt.Println("Deps:")
		for _, ref := range e.Imports {
			fmt.Printf("  %s (%s)\n", ref.Name, ref.Path)
		}
	}
	fmt.Println("---")
}

// PrintEntityList prints a set of entities with a header and total.
func PrintEntityList(header string, entities []*entity.Entity, showID, showDeps bool) {
	bold := color.New(color.Bold)

	bold.Printf("%s (%d):\n\n", header, len(entities))
	for _, e := range entities {
		PrintEntity(e, showID, showDeps)
	}
}

// PrintAffectedReport prints the full affected analysis.
func PrintAffectedReport(report *analysis.AffectedReport, baseRef string) {
	bold := color.New(color.Bold)
	yellow := color.New(color.FgYellow)

	fmt.Printf("Changed files since %s (%d):\n", baseRef, len(report.Changed))
	for _, cf := range report.Changed {
		yellow.Printf("  [%s] %s\n", cf.Kind, cf.Path)
	}
	fmt.Println()

	fmt.Println("---")
	bold.Printf("Directly affected entities (%d):\n\n", len(report.Direct))
	for _, ae := range report.Direct {
		printAffectedEntity(ae)
	}

	if len(report.Consumers) > 0 {
		bold.Printf("Consumer entities (%d):\n\n", len(report.Consumers))
		for _, ae := range report.Consumers {
			printAffectedEntity(ae)
		}
	}

	total := len(report.Direct) + len(report.Consumers)
	bold.Printf("Summary: %d changed files, %d direct, %d consumers, %d total affected\n",
		len(report.Changed), len(report.Direct), len(report.Consumers), total)
}

func printAffectedEntity(ae analysis.AffectedEntity) {
	fmt.Printf("Name: %s\n", ae.Entity.Name)
	fmt.Printf("Type: %s\n", ae.Entity.Kind)
	fmt.Printf("File: %s\n", ae.Entity.FilePath)
	fmt.Printf("Reason: %s\n", ae.Reason)
	fmt.Println("---")
}

// PrintChains prints dependency chains as name sequences with file hints.
func PrintChains(g *graph.Graph, result *analysis.ChainResult, start, end string) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)

	if len(result.Paths) == 0 {
		fmt.Printf("No dependency chain found from %q to %q.\n", start, end)
		return
	}

	bold.Printf("Found %d chain(s) from %q to %q:\n\n", len(result.Paths), start, end)
	for i, path := range result.Paths {
		green.Printf("Chain %d (%d hops):\n", i+1, len(path)-1)
		for step, id := range path {
			node := g.Node(id)
			indent := ""
			if step > 0 {
				indent = "  -> "
			}
			fmt.Printf("  %s%s (%s) %s\n", indent, node.Name, node.Kind, node.File)
		}
		fmt.Println()
	}

	if result.Truncated {
		PrintTruncation("chain enumeration stopped at the --max-paths bound; more chains may exist")
	}
}

// PrintCycles prints detected cycles with each loop closed back to its
// first node.
func PrintCycles(g *graph.Graph, found []cycles.Cycle, truncated bool) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)

	if len(found) == 0 {
		color.New(color.FgGreen).Println("No circular dependencies found.")
		return
	}

	bold.Printf("Found %d circular dependencies:\n\n", len(found))
	for i, cycle := range found {
		red.Printf("Cycle %d (%d entities):\n", i+1, len(cycle.Nodes))
		for _, id := range cycle.Nodes {
			node := g.Node(id)
			fmt.Printf("  %s (%s) %s\n", node.Name, node.Kind, node.File)
		}
		first := g.Node(cycle.Nodes[0])
		fmt.Printf("  -> back to %s\n\n", first.Name)
	}

	if truncated {
		PrintTruncation("cycle search stopped at the --max-cycles bound; more cycles may exist")
	}
}

// PrintRanking prints the dependency-count ranking.
func PrintRanking(ranked []rank.Ranked) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	bold.Printf("Entities ranked by dependency count (%d):\n\n", len(ranked))
	for _, r := range ranked {
		fmt.Printf("%4d  %s (%s)\n", r.Count, r.Node.Name, r.Node.Kind)
		cyan.Printf("      %s\n", r.Node.File)
	}
}

// PrintTruncation emits a truncation notice on stderr so that primary
// output redirected to a pipe is unaffected.
func PrintTruncation(msg string) {
	fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
}
