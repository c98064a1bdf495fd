package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"

	"github.com/unfurl-format/unfurl"
	"github.com/unfurl-format/unfurl/expand"
	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

func expandCmd(cfg *ExpandConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Expand.Parse(cc, args)
	if err != nil {
		cfg.Expand.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: expand requires at least one config", cli.ErrUsage)
	}
	configs, err := readConfigs(cc, args)
	if err != nil {
		return err
	}
	var opts []pipeline.Option
	if cfg.Cap > 0 {
		opts = append(opts, pipeline.WithQueueCap(cfg.Cap))
	}
	records, err := expandConfigs(cfg.keys(), configs, opts...)
	if err != nil {
		return err
	}
	if cfg.List {
		records = []*ir.Node{ir.FromSlice(records)}
	}
	return renderRecords(cc.Out, records, cfg.JSON)
}

func expandConfigs(keys expand.Keys, configs []string, opts ...pipeline.Option) ([]*ir.Node, error) {
	ex, err := expand.New(keys)
	if err != nil {
		return nil, err
	}
	chain := append(unfurl.DefaultChain(nil), ex)
	return unfurl.New(chain, unfurl.Configs(configs...)...).
		WithEngineOptions(opts...).
		Expand()
}

// readConfigs replaces a "-" argument by the content of standard input.
func readConfigs(cc *cli.Context, args []string) ([]string, error) {
	res := make([]string, len(args))
	for i, arg := range args {
		if arg != "-" {
			res[i] = arg
			continue
		}
		d, err := io.ReadAll(cc.In)
		if err != nil {
			return nil, fmt.Errorf("error reading stdin: %w", err)
		}
		res[i] = string(d)
	}
	return res, nil
}

func renderRecords(w io.Writer, records []*ir.Node, asJSON bool) error {
	for i, rec := range records {
		if i > 0 {
			if _, err := w.Write([]byte("---\n")); err != nil {
				return err
			}
		}
		if err := renderRecord(w, rec, asJSON); err != nil {
			return fmt.Errorf("error rendering record %d: %w", i, err)
		}
	}
	return nil
}

func renderRecord(w io.Writer, rec *ir.Node, asJSON bool) error {
	if asJSON {
		d, err := rec.MarshalJSON()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, d, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err = w.Write(buf.Bytes())
		return err
	}
	d, err := yaml.Marshal(rec.ToGo())
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}
