package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"google.golang.org/genai"

	"github.com/anvers/folio"
)

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "ask the AI assistant about the portfolio" }
func (*assistCmd) Usage() string {
	return `assist <question>:
  Answer a question about the portfolio using Gemini. The current investment
  overview is passed along as context. Requires GEMINI_API_KEY.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return fail(fmt.Errorf("assist needs a question"))
	}
	question := strings.Join(f.Args(), " ")

	p, err := loadPortfolio()
	if err != nil {
		return fail(err)
	}
	overview, err := portfolioOverview(p)
	if err != nil {
		return fail(err)
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	prompt := fmt.Sprintf(
		"You are a portfolio analysis assistant. Here is the investor's current portfolio:\n\n%s\nQuestion: %s",
		overview, question)
	resp, err := client.Models.GenerateContent(ctx, "gemini-2.5-flash", genai.Text(prompt), nil)
	if err != nil {
		return fail(err)
	}
	printMarkdown(resp.Text())
	return subcommands.ExitSuccess
}

// portfolioOverview renders the investments table as plain markdown for the
// model's context.
func portfolioOverview(p *folio.Portfolio) (string, error) {
	rows, err := folio.InvestmentsByGroup(p, folio.Date{}, folio.Today())
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("| Name | Currency | Market Value | Cash In | Cash Out | Total P&L | IRR |\n")
	for _, row := range rows {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %.2f | %.4f |\n",
			row.Name, row.Currency, row.MarketValue.StringFixed(2),
			row.CashIn.StringFixed(2), row.CashOut.StringFixed(2),
			row.TotalPnL, row.IRR)
	}
	return sb.String(), nil
}
