package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/unfurl-format/unfurl"
	"github.com/unfurl-format/unfurl/pipeline"
	"github.com/unfurl-format/unfurl/stage"
)

func chainCmd(cfg *ChainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Chain.Parse(cc, args)
	if err != nil {
		cfg.Chain.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if cfg.Builtins {
		for _, name := range stage.Builtins().Names() {
			fmt.Fprintln(cc.Out, name)
		}
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: chain requires a bootstrap config (or -builtins)", cli.ErrUsage)
	}
	configs, err := readConfigs(cc, args)
	if err != nil {
		return err
	}
	bootstrap, err := unfurl.BootstrapChain()
	if err != nil {
		return err
	}
	sink := pipeline.NewFactorySink(stage.Builtins())
	if err := pipeline.New(bootstrap).Run(unfurl.Configs(configs...), sink); err != nil {
		return fmt.Errorf("error resolving bootstrap config: %w", err)
	}
	for i, p := range sink.Result() {
		fmt.Fprintf(cc.Out, "%d: %s\n", i, p.Name())
	}
	return nil
}
