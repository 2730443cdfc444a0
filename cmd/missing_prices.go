package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/anvers/folio"
)

type missingPricesCmd struct{}

func (*missingPricesCmd) Name() string     { return "missing-prices" }
func (*missingPricesCmd) Synopsis() string { return "list stale or missing price directives" }
func (*missingPricesCmd) Usage() string {
	return `missing-prices:
  Evaluate the full portfolio and list every price lookup that had to fall
  back on a quote older than a few days, with the fetch command to fix it.
`
}

func (*missingPricesCmd) SetFlags(f *flag.FlagSet) {}

func (*missingPricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := loadPortfolio()
	if err != nil {
		return fail(err)
	}

	// touch every account over its whole lifetime so the recorder sees all
	// the lookups the dashboard would trigger
	fp := p.Filtered(nil, "")
	start, end, ok := fp.CashFlowTimeRange(false)
	if ok {
		if _, err := folio.PortfolioValues(fp, start, end); err != nil {
			return fail(err)
		}
	}

	missing := p.Recorder().MissingPrices(folio.Today())
	if len(missing) == 0 {
		fmt.Println("all prices are up to date")
		return subcommands.ExitSuccess
	}

	var sb strings.Builder
	sb.WriteString("# Missing Prices\n\n")
	sb.WriteString("| Currency | Quote | Requested | Last Known | Command |\n|---|---|---|---|---|\n")
	for _, m := range missing {
		last := "never"
		if !m.ActualDate.IsZero() {
			last = m.ActualDate.String()
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | `%s` |\n", m.Currency, m.Quote, m.RequestedDate, last, m.Command)
	}
	printMarkdown(sb.String())
	return subcommands.ExitSuccess
}
