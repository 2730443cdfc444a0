package folio

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ConfigError reports an invalid or inconsistent investments configuration.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// InvestmentConfig declares one investment: the asset account holding the
// commodity, and the cash and dividend accounts whose postings produce its
// external flows.
type InvestmentConfig struct {
	Currency         string    `toml:"currency"`
	Name             string    `toml:"name"`
	AssetAccount     string    `toml:"asset_account"`
	CashAccounts     []string  `toml:"cash_accounts"`
	DividendAccounts []string  `toml:"dividend_accounts"`
	Quote            QuoteSpec `toml:"quote"`
}

// GroupConfig declares a named set of investments reported together,
// optionally with its own target currency.
type GroupConfig struct {
	Name        string   `toml:"name"`
	Currency    string   `toml:"currency"`
	Investments []string `toml:"investments"`
}

// Config is the investments configuration file.
type Config struct {
	OperatingCurrency []string           `toml:"operating_currency"`
	Investments       []InvestmentConfig `toml:"investment"`
	Groups            []GroupConfig      `toml:"group"`
}

// DecodeConfig parses and validates a TOML configuration.
func DecodeConfig(r io.Reader) (*Config, error) {
	var c Config
	if err := toml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadConfigFile reads and validates the configuration at path.
func ReadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	defer f.Close()
	return DecodeConfig(f)
}

func (c *Config) validate() error {
	if len(c.OperatingCurrency) == 0 {
		return configErrorf("config declares no operating_currency")
	}
	byAccount := make(map[string]bool, len(c.Investments))
	for _, inv := range c.Investments {
		if inv.AssetAccount == "" {
			return configErrorf("investment %q has no asset_account", inv.Name)
		}
		if byAccount[inv.AssetAccount] {
			return configErrorf("duplicate investment for account %s", inv.AssetAccount)
		}
		byAccount[inv.AssetAccount] = true
	}
	seen := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if g.Name == "" {
			return configErrorf("group without a name")
		}
		if seen[g.Name] {
			return configErrorf("duplicate group %q", g.Name)
		}
		seen[g.Name] = true
		for _, account := range g.Investments {
			if !byAccount[account] {
				return configErrorf("group %q references unknown investment %s", g.Name, account)
			}
		}
	}
	return nil
}

// Investment returns the investment configured for an asset account.
func (c *Config) Investment(account string) (InvestmentConfig, bool) {
	for _, inv := range c.Investments {
		if inv.AssetAccount == account {
			return inv, true
		}
	}
	return InvestmentConfig{}, false
}

// Group returns the group configuration by name.
func (c *Config) Group(name string) (GroupConfig, bool) {
	for _, g := range c.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return GroupConfig{}, false
}

// MainCurrency is the first operating currency, the default target for
// valuation when neither the request nor the group overrides it.
func (c *Config) MainCurrency() string { return c.OperatingCurrency[0] }
