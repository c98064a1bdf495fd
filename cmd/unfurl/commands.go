package main

import (
	"github.com/scott-cotton/cli"

	"github.com/unfurl-format/unfurl/pipeline"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "unfurl").
		WithSynopsis("unfurl [opts] command [opts]").
		WithDescription("unfurl expands elastic configuration trees into flat records.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return unfurlMain(cfg, cc, args)
		}).
		WithSubs(
			ExpandCommand(cfg),
			DiffCommand(cfg),
			ChainCommand(cfg))
}

func ExpandCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ExpandConfig{
		MainConfig:  mainCfg,
		Stem:        "childs",
		Leaf:        "task",
		LeafDefault: "name",
		Other:       "vars",
		Map:         "vars",
		Cap:         pipeline.DefaultQueueCap,
	}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("expand").
		WithAliases("x", "ex").
		WithSynopsis("expand [opts] <config> [configs...]").
		WithDescription(expandDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return expandCmd(cfg, cc, args)
		})
	cfg.Expand = cmd
	return cmd
}

const expandDescription = `expand resolves configs (files, urls, gh:/bb: abbreviations,
inline yaml, or - for stdin) and unfurls their trees into flat records.

A tree nests child configs under the stem key, carries record payloads
under the leaf key and inherits everything named by -vars down each
branch, closer values winning:

  vars:
    aa: 11
  childs:
    - task:
        name: t1
      vars:
        bb: 22
    - t2

gives one record per leaf, each with its accumulated vars.`

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{
		MainConfig:  mainCfg,
		Stem:        "childs",
		Leaf:        "task",
		LeafDefault: "name",
		Other:       "vars",
		Map:         "vars",
	}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("diff").
		WithAliases("d", "di").
		WithSynopsis("diff [opts] <config-a> <config-b>").
		WithDescription("diff the expanded records of two configs").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return diffCmd(cfg, cc, args)
		})
	cfg.Diff = cmd
	return cmd
}

func ChainCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ChainConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("chain").
		WithAliases("c", "ch").
		WithSynopsis("chain [-builtins] [bootstrap-configs...]").
		WithDescription("resolve a bootstrap config into a processor chain and list its stages").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return chainCmd(cfg, cc, args)
		})
	cfg.Chain = cmd
	return cmd
}
