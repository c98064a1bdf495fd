// Package debug provides env-gated diagnostic logging for pipeline runs.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Engine bool
	Expand bool
	Stage  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Engine = boolEnv("UNFURL_DEBUG_ENGINE")
	d.Expand = boolEnv("UNFURL_DEBUG_EXPAND")
	d.Stage = boolEnv("UNFURL_DEBUG_STAGE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Engine() bool {
	return d.Engine
}
func Expand() bool {
	return d.Expand
}
func Stage() bool {
	return d.Stage
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

func JSON(v any) string {
	d, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(d)
}
