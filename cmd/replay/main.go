// Command replay re-runs a fixture through the refinement controller and
// reports whether the outcome matches the fixture's recorded expectation,
// matching cmd/replay/main.go's --fixture flag and comparison-table
// output shape (its --db mode has no counterpart here: STAMINA fixtures
// carry their own transition table rather than being derived from a live
// session database).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/stamina-go/internal/replay"
)

func main() {
	fixturePath := flag.String("fixture", "", "path to a replay fixture JSON file")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	f, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(2)
	}

	report, err := replay.Replay(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(replay.Summarize([]replay.Report{report}))
	if !report.Passed() {
		os.Exit(1)
	}
}
