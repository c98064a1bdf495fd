package stage

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/unfurl-format/unfurl/debug"
	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

// Fetch resolves a string item to its raw text: a local file is read, an
// http(s) URL is retrieved, and a string containing a newline is taken as
// inline content. Anything else is an error. The output is a string item
// holding the content.
type Fetch struct {
	base
	client *retryablehttp.Client
}

func NewFetch() *Fetch {
	client := retryablehttp.NewClient()
	client.Logger = nil
	return &Fetch{client: client}
}

func (f *Fetch) Name() string {
	return "fetch"
}

func (f *Fetch) Process() (pipeline.Output, error) {
	if f.item == nil {
		return pipeline.Output{}, nil
	}
	if f.item.Type != ir.StringType {
		return pipeline.Output{}, fmt.Errorf("%w: fetch needs a url or path, got %v",
			pipeline.ErrConfigFormat, f.item.Type)
	}
	content, err := f.get(f.item.String)
	if err != nil {
		return pipeline.Output{}, err
	}
	return pipeline.One(ir.FromString(content)), nil
}

func (f *Fetch) get(url string) (string, error) {
	if _, err := os.Stat(url); err == nil {
		if debug.Stage() {
			debug.Logf("fetch: reading file %s\n", url)
		}
		d, err := os.ReadFile(url)
		if err != nil {
			return "", fmt.Errorf("could not read %q: %w", url, err)
		}
		return string(d), nil
	}
	if strings.HasPrefix(url, "http") {
		if debug.Stage() {
			debug.Logf("fetch: retrieving %s\n", url)
		}
		resp, err := f.client.Get(url)
		if err != nil {
			return "", fmt.Errorf("could not retrieve configuration from %q: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("could not retrieve configuration from %q: status %s", url, resp.Status)
		}
		d, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("could not read response from %q: %w", url, err)
		}
		return string(d), nil
	}
	if strings.ContainsRune(url, '\n') {
		return url, nil
	}
	return "", fmt.Errorf("%w: not a supported config url and no local file found: %s",
		pipeline.ErrConfigFormat, url)
}

type fetchSymbol struct{}

func FetchSymbol() pipeline.Symbol {
	return fetchSymbol{}
}

func (fetchSymbol) Name() string {
	return "fetch"
}

func (fetchSymbol) Instance(params *ir.Node) (pipeline.Processor, error) {
	if params != nil {
		return nil, fmt.Errorf("%w: fetch takes no parameters", pipeline.ErrConfigFormat)
	}
	return NewFetch(), nil
}
