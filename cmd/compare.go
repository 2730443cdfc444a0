package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/anvers/folio"
)

type compareCmd struct {
	method      string
	investments string
	compareWith string
	currency    string
	start, end  string
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare the selection against groups, accounts or prices" }
func (*compareCmd) Usage() string {
	return `compare -compareWith <ids> [-method twr] [-s <date>] [-d <date>]:
  Compare the selected portfolio slice with other slices or commodity prices,
  every series rebased to the first common date.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", "twr", "metric used for portfolio series")
	f.StringVar(&c.investments, "investments", "", "comma separated base selection")
	f.StringVar(&c.compareWith, "compareWith", "", "comma separated slices or commodities to compare with")
	f.StringVar(&c.currency, "currency", "", "target currency")
	f.StringVar(&c.start, "s", "", "start date (YYYY-MM-DD)")
	f.StringVar(&c.end, "d", "", "end date (YYYY-MM-DD, defaults to today)")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := loadPortfolio()
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

	var with []string
	if c.compareWith != "" {
		with = strings.Split(c.compareWith, ",")
	}
	series, err := folio.CompareChart(fp, start, end, c.method, with)
	if err != nil {
		return fail(err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Comparison (%s)\n\n", c.method)
	sb.WriteString("| Series | From | To | Final |\n|---|---|---|---:|\n")
	for _, s := range series {
		if len(s.Data) == 0 {
			continue
		}
		first, last := s.Data[0], s.Data[len(s.Data)-1]
		fmt.Fprintf(&sb, "| %s | %s | %s | %.2f%% |\n", s.Name, first.Date, last.Date, 100*last.Value)
	}
	printMarkdown(sb.String())
	return subcommands.ExitSuccess
}
