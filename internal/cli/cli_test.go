package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/pkg/config"
	errs "github.com/matzehuels/lanegraph/pkg/errors"
	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
)

const diamondJSON = `{
  "nodes": [
    {"id": "1", "lamport": 1, "message": "root"},
    {"id": "2", "deps": ["1"], "lamport": 2, "message": "left"},
    {"id": "3", "deps": ["1"], "lamport": 2, "message": "right"},
    {"id": "4", "deps": ["3", "2"], "lamport": 3, "message": "merge"}
  ],
  "frontiers": ["4"]
}`

// isolate points every user directory at a temp dir and disables caching.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv(config.EnvPrefix+"CACHE__BACKEND", "none")
	return dir
}

func writeDataset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args and returns what commands wrote
// to the CLI output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(&bytes.Buffer{}, LogInfo)
	c.out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		formats []string
		want    map[string]string
	}{
		{
			name:    "single format with output",
			input:   "history.json",
			output:  "lanes.svg",
			formats: []string{"svg"},
			want:    map[string]string{"svg": "lanes.svg"},
		},
		{
			name:    "single format from input",
			input:   "dir/history.json",
			formats: []string{"svg"},
			want:    map[string]string{"svg": "dir/history.svg"},
		},
		{
			name:    "json keeps the layout suffix",
			input:   "history.yaml",
			formats: []string{"json", "txt"},
			want:    map[string]string{"json": "history.layout.json", "txt": "history.txt"},
		},
		{
			name:    "several formats use output as base",
			input:   "history.json",
			output:  "out/lanes.svg",
			formats: []string{"svg", "dot"},
			want:    map[string]string{"svg": "out/lanes.svg", "dot": "out/lanes.dot"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.input, tt.output, tt.formats)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptionsMerge(t *testing.T) {
	c := &CLI{Config: &config.Configuration{
		Render: config.RenderConfig{Format: "svg,txt", Style: "lanes", CellSize: 20},
		Layout: config.LayoutConfig{DepOrder: "priority", MaxRows: 50},
	}}

	t.Run("config only", func(t *testing.T) {
		opts := c.options(nil, nil)
		if opts.DepOrder != "priority" || opts.MaxRows != 50 || opts.CellSize != 20 {
			t.Errorf("options = %+v", opts)
		}
		if !reflect.DeepEqual(opts.Formats, []string{"svg", "txt"}) {
			t.Errorf("Formats = %v", opts.Formats)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		lf := &layoutFlags{frontiers: []string{"a"}, depOrder: "first", maxRows: 3, strict: true}
		rf := &renderFlags{formats: "dot", style: "nodelink", cellSize: 12, noLabels: true}
		opts := c.options(lf, rf)
		if opts.DepOrder != "first" || opts.MaxRows != 3 || !opts.Strict {
			t.Errorf("layout options = %+v", opts)
		}
		if opts.Style != "nodelink" || opts.CellSize != 12 || !opts.NoLabels {
			t.Errorf("render options = %+v", opts)
		}
		if !reflect.DeepEqual(opts.Formats, []string{"dot"}) || !reflect.DeepEqual(opts.Frontiers, []string{"a"}) {
			t.Errorf("Formats = %v, Frontiers = %v", opts.Formats, opts.Frontiers)
		}
	})
}

func TestLayoutCommand(t *testing.T) {
	dir := isolate(t)
	input := writeDataset(t, dir, "history.json", diamondJSON)

	if _, err := run(t, "layout", input); err != nil {
		t.Fatalf("layout: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "history.layout.json"))
	if err != nil {
		t.Fatalf("layout output missing: %v", err)
	}
	defer f.Close()
	v, err := lgio.ReadLayout(f)
	if err != nil {
		t.Fatalf("ReadLayout: %v", err)
	}

	var order []string
	for _, row := range v.Rows {
		order = append(order, row.Active.Event.ID)
	}
	if got := strings.Join(order, ","); got != "4,2,3,1" {
		t.Errorf("row order = %s, want 4,2,3,1", got)
	}
}

func TestLayoutCommandStdout(t *testing.T) {
	dir := isolate(t)
	input := writeDataset(t, dir, "history.json", diamondJSON)

	out, err := run(t, "layout", input, "-o", "-", "--max-rows", "2")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	v, err := lgio.UnmarshalLayout([]byte(out))
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if len(v.Rows) != 2 || !v.Truncated {
		t.Errorf("rows = %d, truncated = %v; want 2 and true", len(v.Rows), v.Truncated)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	input := writeDataset(t, dir, "history.json", diamondJSON)

	if _, err := run(t, "render", input, "-f", "svg,txt,dot"); err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, ext := range []string{"svg", "txt", "dot"} {
		data, err := os.ReadFile(filepath.Join(dir, "history."+ext))
		if err != nil {
			t.Errorf("missing %s output: %v", ext, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s output is empty", ext)
		}
	}
}

func TestRenderCommandRejectsFormat(t *testing.T) {
	dir := isolate(t)
	input := writeDataset(t, dir, "history.json", diamondJSON)

	_, err := run(t, "render", input, "-f", "gif")
	if err == nil {
		t.Fatal("expected an error for an unknown format")
	}
	if code := errs.GetCode(err); code != errs.ErrCodeInvalidFormat {
		t.Errorf("code = %s, want %s", code, errs.ErrCodeInvalidFormat)
	}
}

func TestShowCommand(t *testing.T) {
	dir := isolate(t)
	input := writeDataset(t, dir, "history.json", diamondJSON)

	out, err := run(t, "show", input, "--no-color", "--ids")
	if err != nil {
		t.Fatalf("show: %v", err)
	}

	var nodes []string
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "*") {
			nodes = append(nodes, l)
		}
	}
	if len(nodes) != 4 {
		t.Fatalf("show printed %d node lines, want 4:\n%s", len(nodes), out)
	}
	for i, msg := range []string{"merge", "left", "right", "root"} {
		if !strings.Contains(nodes[i], msg) {
			t.Errorf("node line %d = %q, want %q", i, nodes[i], msg)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("--no-color output contains escape codes:\n%s", out)
	}
}

func TestValidateCommand(t *testing.T) {
	dir := isolate(t)

	tests := []struct {
		name    string
		content string
		code    errs.Code
	}{
		{"valid", diamondJSON, ""},
		{"missing dependency", `{"nodes":[{"id":"a","lamport":1,"deps":["ghost"]}]}`, errs.ErrCodeInvalidInput},
		{"unknown frontier", `{"nodes":[{"id":"a","lamport":1}],"frontiers":["b"]}`, errs.ErrCodeInvalidInput},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeDataset(t, dir, "ds"+string(rune('a'+i))+".json", tt.content)
			_, err := run(t, "validate", input)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if code := errs.GetCode(err); code != tt.code {
				t.Errorf("code = %s, want %s (%v)", code, tt.code, err)
			}
		})
	}
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "lanegraph.yml")

	if _, err := run(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != config.GetDefaultConfigTemplate() {
		t.Error("config init did not write the default template")
	}

	if _, err := run(t, "config", "init", path); err == nil {
		t.Error("second init should refuse to overwrite")
	}
	if _, err := run(t, "config", "init", path, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestCachePathCommand(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got, want := strings.TrimSpace(out), filepath.Join(dir, "cache", appName); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestValidateDatasetFrontiers(t *testing.T) {
	ds, err := lgio.ReadDataset(strings.NewReader(diamondJSON), lgio.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if err := validateDataset(ds); err != nil {
		t.Errorf("validateDataset: %v", err)
	}
	if _, err := pipeline.DatasetHistory(ds); err != nil {
		t.Errorf("DatasetHistory: %v", err)
	}
}

func TestFlagCompletion(t *testing.T) {
	isolate(t)

	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"render", "x.json", "--format", ""}, []string{"dot", "svg", "txt"}},
		{[]string{"render", "x.json", "--format", "svg,"}, []string{"svg,json", "svg,pdf"}},
		{[]string{"layout", "x.json", "--dep-order", ""}, []string{"first", "priority"}},
		{[]string{"git", "--style", ""}, []string{"lanes", "nodelink"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, append([]string{cobra.ShellCompRequestCmd}, tt.args...)...)
			if err != nil {
				t.Fatalf("complete: %v", err)
			}
			lines := strings.Split(out, "\n")
			for _, want := range tt.want {
				if !slices.Contains(lines, want) {
					t.Errorf("completions %q missing %q", lines, want)
				}
			}
		})
	}
}
