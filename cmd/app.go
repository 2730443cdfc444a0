// Package cmd implements the CLI application to analyze investment returns.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/anvers/folio"
)

// Commands lists the subcommands a main package registers.
var Commands = []subcommands.Command{
	&serveCmd{},
	&returnsCmd{},
	&investmentsCmd{},
	&compareCmd{},
	&missingPricesCmd{},
	&fetchCmd{},
	&assistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var ledgerFile = flag.String("ledger-file", "ledger.jsonl", "Path to the ledger file (JSONL format)")
var configFile = flag.String("config-file", "folio.toml", "Path to the investments configuration (TOML)")

// loadPortfolio is the central function to load the configured portfolio.
func loadPortfolio() (*folio.Portfolio, error) {
	return folio.LoadPortfolio(*ledgerFile, *configFile)
}

// printMarkdown renders markdown to the terminal.
func printMarkdown(doc string) {
	out, err := glamour.Render(doc, "auto")
	if err != nil {
		// fall back to the raw markdown rather than swallowing the report
		fmt.Print(doc)
		return
	}
	fmt.Print(out)
}

// parseRange reads the -s and -d styled date flags, with -d defaulting to
// today.
func parseRange(start, end string) (folio.Date, folio.Date, error) {
	endDate := folio.Today()
	var startDate folio.Date
	var err error
	if end != "" {
		if endDate, err = folio.ParseDate(end); err != nil {
			return startDate, endDate, fmt.Errorf("parsing end date: %w", err)
		}
	}
	if start != "" {
		if startDate, err = folio.ParseDate(start); err != nil {
			return startDate, endDate, fmt.Errorf("parsing start date: %w", err)
		}
	}
	return startDate, endDate, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}
