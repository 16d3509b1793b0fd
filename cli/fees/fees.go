/*
Package fees contains commands inspecting and maintaining the node's fee map.
*/
package fees

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/tokenfee/feemap/cli/cmdargs"
	"github.com/tokenfee/feemap/cli/options"
	"github.com/tokenfee/feemap/pkg/config"
	"github.com/tokenfee/feemap/pkg/core/policy"
	"github.com/tokenfee/feemap/pkg/feemap"
	"github.com/tokenfee/feemap/pkg/token"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

var (
	storedFlag = cli.BoolFlag{
		Name:  "stored",
		Usage: "use the fee map persisted in the node's store instead of the configured one",
	}
	baseFlag = cli.StringFlag{
		Name:  "base, b",
		Usage: "responder ID to derive from (defaults to ApplicationConfiguration.ResponderID)",
	}
	inFlag = cli.StringFlag{
		Name:  "in, i",
		Usage: "YAML file with token ID to fee mapping to validate instead of the configuration",
	}
)

var errNoResponderID = errors.New("no responder ID given, use --base flag or set ApplicationConfiguration.ResponderID")

// NewCommands returns 'fees' command.
func NewCommands() []cli.Command {
	var cfgFlags = []cli.Flag{options.Config, options.ConfigFile}
	cfgFlags = append(cfgFlags, options.Network...)
	return []cli.Command{{
		Name:  "fees",
		Usage: "Inspect and maintain the fee map",
		Subcommands: []cli.Command{
			{
				Name:      "show",
				Usage:     "Print the fee map and its digest",
				UsageText: "feemap fees show [--stored] [--config-path path] [-p/-m/-t] [--config-file file]",
				Action:    showFeeMap,
				Flags:     append([]cli.Flag{storedFlag}, cfgFlags...),
			},
			{
				Name:      "digest",
				Usage:     "Print the fee map digest",
				UsageText: "feemap fees digest [--stored] [--config-path path] [-p/-m/-t] [--config-file file] [token:fee ...]",
				Description: `Prints the digest of the configured (or stored with --stored) fee map.
   If token:fee pairs are given, the digest of the fee map built from them is
   printed instead, token is either a name (like MOB) or a decimal token ID:

     feemap fees digest MOB:400000000 1:2560
`,
				Action: printDigest,
				Flags:  append([]cli.Flag{storedFlag}, cfgFlags...),
			},
			{
				Name:      "responder-id",
				Usage:     "Print the responder ID derived from the fee map",
				UsageText: "feemap fees responder-id [--base id] [--stored] [--config-path path] [-p/-m/-t] [--config-file file]",
				Action:    printResponderID,
				Flags:     append([]cli.Flag{baseFlag, storedFlag}, cfgFlags...),
			},
			{
				Name:      "validate",
				Usage:     "Validate the configured fee map or the one given in a file",
				UsageText: "feemap fees validate [--in file] [--config-path path] [-p/-m/-t] [--config-file file]",
				Action:    validateFeeMap,
				Flags:     append([]cli.Flag{inFlag}, cfgFlags...),
			},
			{
				Name:      "apply",
				Usage:     "Persist the configured fee map in the node's store",
				UsageText: "feemap fees apply [--config-path path] [-p/-m/-t] [--config-file file]",
				Action:    applyFeeMap,
				Flags:     cfgFlags,
			},
			{
				Name:      "reset",
				Usage:     "Reset the persisted fee map to the default one",
				UsageText: "feemap fees reset [--config-path path] [-p/-m/-t] [--config-file file]",
				Action:    resetFeeMap,
				Flags:     cfgFlags,
			},
		},
	}}
}

// withPolicy runs f over the policy backed by the configured store.
func withPolicy(cfg config.Config, f func(*policy.Policy) error) error {
	store, err := options.InitStore(cfg.ApplicationConfiguration)
	if err != nil {
		return err
	}
	defer store.Close()
	p, err := policy.New(store, nil)
	if err != nil {
		return err
	}
	return f(p)
}

// getFeeMap returns either the configured or the stored fee map.
func getFeeMap(ctx *cli.Context, cfg config.Config) (*feemap.FeeMap, error) {
	if !ctx.Bool("stored") {
		return cfg.ProtocolConfiguration.FeeMap()
	}
	var fm *feemap.FeeMap
	err := withPolicy(cfg, func(p *policy.Policy) error {
		fm = p.FeeMap()
		return nil
	})
	return fm, err
}

func loadFeeMap(ctx *cli.Context) (config.Config, *feemap.FeeMap, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return config.Config{}, nil, err
	}
	fm, err := getFeeMap(ctx, cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, fm, nil
}

func writeFeeMap(ctx *cli.Context, fm *feemap.FeeMap) {
	w := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tToken\tMinimum fee")
	fm.Iterate(func(id token.ID, fee uint64) bool {
		fmt.Fprintf(w, "%s\t%s\t%d\n", id, token.Name(id), fee)
		return true
	})
	_ = w.Flush()
	fmt.Fprintf(ctx.App.Writer, "Digest: %s\n", fm.Digest())
}

func showFeeMap(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	_, fm, err := loadFeeMap(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	writeFeeMap(ctx, fm)
	return nil
}

func printDigest(ctx *cli.Context) error {
	fees, exitErr := cmdargs.GetFeesFromContext(ctx)
	if exitErr != nil {
		return exitErr
	}
	var (
		fm  *feemap.FeeMap
		err error
	)
	if fees != nil {
		if ctx.Bool("stored") {
			return cli.NewExitError("--stored can't be used along with explicit fees", 1)
		}
		fm, err = feemap.New(fees)
	} else {
		_, fm, err = loadFeeMap(ctx)
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, fm.Digest())
	return nil
}

func printResponderID(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, fm, err := loadFeeMap(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	base := ctx.String("base")
	if base == "" {
		base = cfg.ApplicationConfiguration.ResponderID
	}
	if base == "" {
		return cli.NewExitError(errNoResponderID, 1)
	}
	fmt.Fprintln(ctx.App.Writer, fm.ResponderID(feemap.ResponderID(base)))
	return nil
}

func validateFeeMap(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	var (
		fm  *feemap.FeeMap
		err error
	)
	if in := ctx.String("in"); in != "" {
		fm, err = readFeeMapFile(in)
	} else {
		_, fm, err = loadFeeMap(ctx)
	}
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid fee map: %w", err), 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Fee map is valid, digest: %s\n", fm.Digest())
	return nil
}

func readFeeMapFile(path string) (*feemap.FeeMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	fm := new(feemap.FeeMap)
	if err := yaml.Unmarshal(data, fm); err != nil {
		return nil, err
	}
	return fm, nil
}

func applyFeeMap(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return updateStored(ctx, cfg, cfg.ProtocolConfiguration.MinimumFees)
}

func resetFeeMap(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return updateStored(ctx, cfg, nil)
}

// updateStored applies fees (nil for the default fee map) to the stored fee
// map and reports the result.
func updateStored(ctx *cli.Context, cfg config.Config, fees map[token.ID]uint64) error {
	err := withPolicy(cfg, func(p *policy.Policy) error {
		changed, err := p.Apply(fees)
		if err != nil {
			return err
		}
		if changed {
			fmt.Fprintf(ctx.App.Writer, "Fee map updated, digest: %s\n", p.Digest())
		} else {
			fmt.Fprintf(ctx.App.Writer, "Fee map is unchanged, digest: %s\n", p.Digest())
		}
		return nil
	})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}
