package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/anvers/folio"
)

type fetchCmd struct {
	account string
	dryRun  bool
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch latest quotes and append price directives" }
func (*fetchCmd) Usage() string {
	return `fetch [-account <asset account>] [-n]:
  Fetch today's quote for one investment, or for every investment with a
  configured quote source, and append the prices to the ledger file.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "fetch only this investment's asset account")
	f.BoolVar(&c.dryRun, "n", false, "print the prices instead of appending them")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := loadPortfolio()
	if err != nil {
		return fail(err)
	}

	var accounts []string
	if c.account != "" {
		accounts = append(accounts, c.account)
	} else {
		for _, inv := range p.Config().Investments {
			if inv.Quote.URL != "" {
				accounts = append(accounts, inv.AssetAccount)
			}
		}
	}
	if len(accounts) == 0 {
		return fail(fmt.Errorf("no investment has a quote source configured"))
	}

	client := &http.Client{Timeout: 30 * time.Second}
	var prices []folio.Price
	for _, account := range accounts {
		price, err := folio.FetchInvestmentPrice(client, p, account)
		if err != nil {
			return fail(fmt.Errorf("fetching %s: %w", account, err))
		}
		fmt.Printf("%s %s = %s %s\n", price.Date, price.Base, price.Rate, price.Quote)
		prices = append(prices, price)
	}
	if c.dryRun {
		return subcommands.ExitSuccess
	}

	out, err := os.OpenFile(*ledgerFile, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fail(err)
	}
	defer out.Close()
	for _, price := range prices {
		if err := folio.EncodePrice(out, price); err != nil {
			return fail(err)
		}
	}
	return subcommands.ExitSuccess
}
