package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/anvers/folio"
)

type investmentsCmd struct {
	groupBy    string
	currency   string
	start, end string
}

func (*investmentsCmd) Name() string     { return "investments" }
func (*investmentsCmd) Synopsis() string { return "print an overview of every investment" }
func (*investmentsCmd) Usage() string {
	return `investments [-group_by group] [-currency <cur>] [-s <date>] [-d <date>]:
  Print positions, cash in/out, P&L and return rates per investment.
`
}

func (c *investmentsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.groupBy, "group_by", "group", "row per \"group\" or per \"currency\"")
	f.StringVar(&c.currency, "currency", "", "target currency for group_by=currency")
	f.StringVar(&c.start, "s", "", "start date (YYYY-MM-DD)")
	f.StringVar(&c.end, "d", "", "end date (YYYY-MM-DD, defaults to today)")
}

func (c *investmentsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := loadPortfolio()
	if err != nil {
		return fail(err)
	}
	start, end, err := parseRange(c.start, c.end)
	if err != nil {
		return fail(err)
	}

	var rows []folio.InvestmentStats
	switch c.groupBy {
	case "group":
		rows, err = folio.InvestmentsByGroup(p, start, end)
	case "currency":
		rows, err = folio.InvestmentsByCurrency(p, c.currency, start, end)
	default:
		err = fmt.Errorf("invalid group_by %q", c.groupBy)
	}
	if err != nil {
		return fail(err)
	}

	var sb strings.Builder
	sb.WriteString("# Investments\n\n")
	sb.WriteString("| Name | Market Value | Cash In | Cash Out | Total P&L | IRR | TWR |\n")
	sb.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, row := range rows {
		fmt.Fprintf(&sb, "| %s | %s %s | %s | %s | %.2f | %.2f%% | %.2f%% |\n",
			row.Name,
			row.MarketValue.StringFixed(2), row.Currency,
			row.CashIn.StringFixed(2), row.CashOut.StringFixed(2),
			row.TotalPnL, 100*row.IRR, 100*row.TWR)
	}
	printMarkdown(sb.String())
	return subcommands.ExitSuccess
}
