package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/unfurl-format/unfurl/expand"
)

type MainConfig struct {
	JSON bool `cli:"name=j aliases=json desc='render records as json'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func unfurlMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	defer func() {
		if cfg.CloseOut != nil {
			cfg.CloseOut()
		}
	}()
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

type ExpandConfig struct {
	*MainConfig

	Stem        string `cli:"name=stem desc='key holding the child sequence'"`
	Leaf        string `cli:"name=leaf desc='key holding the record payload'"`
	LeafDefault string `cli:"name=name desc='payload key filled in from bare strings'"`
	Other       string `cli:"name=vars desc='comma separated inherited keys'"`
	Map         string `cli:"name=map desc='destination key for shortcut values'"`
	List        bool   `cli:"name=list desc='render one sequence instead of a document per record'"`
	Cap         int    `cli:"name=cap desc='pending queue limit'"`

	Expand *cli.Command
}

func (cfg *ExpandConfig) keys() expand.Keys {
	return keysFrom(cfg.Stem, cfg.Leaf, cfg.LeafDefault, cfg.Other, cfg.Map)
}

type DiffConfig struct {
	*MainConfig

	Stem        string `cli:"name=stem desc='key holding the child sequence'"`
	Leaf        string `cli:"name=leaf desc='key holding the record payload'"`
	LeafDefault string `cli:"name=name desc='payload key filled in from bare strings'"`
	Other       string `cli:"name=vars desc='comma separated inherited keys'"`
	Map         string `cli:"name=map desc='destination key for shortcut values'"`
	Color       bool   `cli:"name=color desc='force colored output'"`

	Diff *cli.Command
}

func (cfg *DiffConfig) keys() expand.Keys {
	return keysFrom(cfg.Stem, cfg.Leaf, cfg.LeafDefault, cfg.Other, cfg.Map)
}

type ChainConfig struct {
	*MainConfig

	Builtins bool `cli:"name=builtins desc='list the built-in processor types and exit'"`

	Chain *cli.Command
}

func keysFrom(stem, leaf, leafDefault, other, keyMap string) expand.Keys {
	keys := expand.Keys{
		Stem:        stem,
		Leaf:        leaf,
		LeafDefault: leafDefault,
	}
	if other != "" {
		keys.OtherValid = strings.Split(other, ",")
	}
	if keyMap != "" {
		keys.LeafKeyMap = map[string]string{"*": keyMap}
	}
	return keys
}
