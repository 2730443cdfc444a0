package folio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// QuoteSpec describes where to fetch the latest quote of a commodity: a GET
// endpoint returning JSON and a jsonpath to the price inside it.
type QuoteSpec struct {
	URL  string `toml:"url"`
	Path string `toml:"path"`
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// FetchQuote retrieves the latest quote per the spec. Providers disagree on
// whether the value comes back as a number, a list, or a localized string,
// so all three are accepted.
func FetchQuote(client *http.Client, spec QuoteSpec) (decimal.Decimal, error) {
	var jobj any
	if err := jwget(client, spec.URL, &jobj); err != nil {
		return decimal.Decimal{}, fmt.Errorf("fetching quote from %q: %w", spec.URL, err)
	}
	jval, err := jsonpath.Get(spec.Path, jobj)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("evaluating %q: %w", spec.Path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer, keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		s := strings.ReplaceAll(strings.ReplaceAll(v, ",", "."), " ", "")
		val, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("quote at %q is an invalid string %q: %w", spec.Path, v, err)
		}
		return decimal.NewFromFloat(val), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("quote at %q is neither a float nor a string: %v", spec.Path, jval)
	}
}

// FetchInvestmentPrice fetches today's price of the configured investment
// and returns it as a price directive in the investment's cost currency.
func FetchInvestmentPrice(client *http.Client, p *Portfolio, account string) (Price, error) {
	inv, ok := p.config.Investment(account)
	if !ok {
		return Price{}, fmt.Errorf("no investment configured for account %s", account)
	}
	if inv.Quote.URL == "" {
		return Price{}, fmt.Errorf("investment %s has no quote source configured", account)
	}
	rate, err := FetchQuote(client, inv.Quote)
	if err != nil {
		return Price{}, err
	}
	ad := p.accounts[account]
	return Price{Date: Today(), Base: inv.Currency, Rate: rate, Quote: ad.CashCurrency}, nil
}
