package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/sergi/go-diff/diffmatchpatch"
)

func diffCmd(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	configs, err := readConfigs(cc, args)
	if err != nil {
		return err
	}
	a, err := expandedText(cfg, configs[0])
	if err != nil {
		return fmt.Errorf("error expanding %s: %w", args[0], err)
	}
	b, err := expandedText(cfg, configs[1])
	if err != nil {
		return fmt.Errorf("error expanding %s: %w", args[1], err)
	}
	differs, err := writeDiff(cc.Out, a, b, cfg.Color)
	if err != nil {
		return err
	}
	if differs {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func expandedText(cfg *DiffConfig, config string) (string, error) {
	records, err := expandConfigs(cfg.keys(), []string{config})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i, rec := range records {
		if i > 0 {
			sb.WriteString("---\n")
		}
		if err := renderRecord(&sb, rec, cfg.JSON); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func writeDiff(w io.Writer, a, b string, forceColor bool) (bool, error) {
	if a == b {
		return false, nil
	}
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	del, ins := diffColors(w, forceColor)
	for _, d := range diffs {
		var err error
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			_, err = del.Fprint(w, prefixLines(d.Text, "-"))
		case diffmatchpatch.DiffInsert:
			_, err = ins.Fprint(w, prefixLines(d.Text, "+"))
		default:
			_, err = io.WriteString(w, prefixLines(d.Text, " "))
		}
		if err != nil {
			return true, err
		}
	}
	return true, nil
}

func diffColors(w io.Writer, force bool) (del, ins *color.Color) {
	del, ins = color.New(color.FgRed), color.New(color.FgGreen)
	enable := force
	if !enable {
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			enable = true
		}
	}
	if enable {
		del.EnableColor()
		ins.EnableColor()
	} else {
		del.DisableColor()
		ins.DisableColor()
	}
	return del, ins
}

func prefixLines(text, prefix string) string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
