package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/anvers/folio"
)

type returnsCmd struct {
	method      string
	interval    string
	investments string
	currency    string
	start, end  string
}

func (*returnsCmd) Name() string     { return "returns" }
func (*returnsCmd) Synopsis() string { return "compute portfolio returns over intervals" }
func (*returnsCmd) Usage() string {
	return `returns [-method twr] [-interval yearly] [-investments <ids>] [-s <date>] [-d <date>]:
  Print the selected return metric per interval as a table.
`
}

func (c *returnsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", "twr", "metric: returns, irr, mdm, twr, pnl, volatility, mdd")
	f.StringVar(&c.interval, "interval", "yearly", "interval shape: heatmap, yearly, periods")
	f.StringVar(&c.investments, "investments", "", "comma separated selection (a:<account>, g:<group>, c:<currency>)")
	f.StringVar(&c.currency, "currency", "", "target currency (defaults to the configured one)")
	f.StringVar(&c.start, "s", "", "start date (YYYY-MM-DD)")
	f.StringVar(&c.end, "d", "", "end date (YYYY-MM-DD, defaults to today)")
}

func (c *returnsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := loadPortfolio()
	if err != nil {
		return fail(err)
	}
	m, err := folio.GetMetric(c.method)
	if err != nil {
		return fail(err)
	}
	start, end, err := parseRange(c.start, c.end)
	if err != nil {
		return fail(err)
	}

	var ids []string
	if c.investments != "" {
		ids = strings.Split(c.investments, ",")
	}
	fp := p.Filtered(ids, c.currency)

	if flowStart, _, ok := fp.CashFlowTimeRange(false); ok && start.Before(flowStart) {
		start = flowStart
	}

	var intervals []folio.Interval
	switch c.interval {
	case "heatmap":
		intervals = folio.IntervalsHeatmap(start, end)
	case "yearly":
		intervals = folio.IntervalsYearly(start, end)
	case "periods":
		intervals = folio.IntervalsPeriods(start, end)
	default:
		return fail(fmt.Errorf("invalid interval %q", c.interval))
	}

	values, err := folio.MetricIntervals(m, fp, intervals)
	if err != nil {
		return fail(err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Returns (%s, %s)\n\n", c.method, fp.Currency)
	sb.WriteString("| Interval | Value |\n|---|---:|\n")
	for _, v := range values {
		if c.method == "pnl" {
			fmt.Fprintf(&sb, "| %s | %.2f |\n", v.Label, v.Value)
		} else {
			fmt.Fprintf(&sb, "| %s | %.2f%% |\n", v.Label, 100*v.Value)
		}
	}
	printMarkdown(sb.String())
	return subcommands.ExitSuccess
}
