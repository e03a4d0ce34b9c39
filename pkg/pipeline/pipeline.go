// Package pipeline provides the load → layout → render pipeline for lanegraph.
//
// The CLI and the HTTP server both go through a [Runner], so caching,
// validation and error classification behave the same at every entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a dataset file or fetch events from a source
//  2. Layout: Assign every reachable event a row and a lane
//  3. Render: Generate output in various formats (SVG, TXT, DOT, JSON, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	ds, err := pipeline.Load(ctx, "history.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h, err := pipeline.DatasetHistory(ds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, h, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Layout only
//	view, err := runner.Layout(ctx, h, opts)
//
//	// Render an existing layout
//	artifacts, err := runner.Render(ctx, view, opts)
package pipeline

import (
	"bytes"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanegraph/pkg/cache"
	errs "github.com/matzehuels/lanegraph/pkg/errors"
	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultCellSize is the SVG lane spacing in pixels.
	DefaultCellSize = 20.0

	// DefaultPNGScale is the resolution multiplier for PNG output.
	DefaultPNGScale = 2.0

	// DefaultDepOrder is the fork policy used when none is configured.
	DefaultDepOrder = layout.DefaultPolicy
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatTXT  = "txt"
)

// Style constants select how graphical formats are drawn.
const (
	// StyleLanes draws the computed lanes directly.
	StyleLanes = "lanes"
	// StyleNodelink hands the event graph to Graphviz and ignores lanes.
	StyleNodelink = "nodelink"
)

// DefaultStyle is the default visual style.
const DefaultStyle = StyleLanes

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatTXT:  true,
}

// ValidStyles is the set of supported visual styles.
var ValidStyles = map[string]bool{
	StyleLanes:    true,
	StyleNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Frontiers []string `json:"frontiers,omitempty"` // Defaults to the dataset's heads
	DepOrder  string   `json:"dep_order,omitempty"`
	MaxRows   int      `json:"max_rows,omitempty"`
	Strict    bool     `json:"strict,omitempty"` // Fail on unresolved references

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Style       string   `json:"style,omitempty"`
	CellSize    float64  `json:"cell_size,omitempty"`
	NoLabels    bool     `json:"no_labels,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`    // Lamport and lane details in DOT labels
	Interactive bool     `json:"interactive,omitempty"` // Lane highlighting in SVG
	Color       bool     `json:"color,omitempty"`       // ANSI colours in TXT

	// Runtime options (not serialized)
	Refresh bool        `json:"-"` // Skip cache lookups
	Logger  *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// View is the computed layout.
	View *layout.View

	// HistoryHash identifies the laid out history in cache keys.
	HistoryHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EventCount int
	EdgeCount  int
	Rows       int
	Lanes      int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, dot, txt)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errs.New(errs.ErrCodeInvalidStyle, "invalid style: %q (must be one of: lanes, nodelink)", style)
	}
	return nil
}

// ValidateDepOrder checks that a fork policy name is registered.
func ValidateDepOrder(name string) error {
	if _, err := layout.PolicyByName(name); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidDepOrder, err, "invalid dep_order")
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.DepOrder == "" {
		o.DepOrder = DefaultDepOrder
	}
	if o.MaxRows < 0 {
		o.MaxRows = 0
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errs.ValidateFrontiers(o.Frontiers); err != nil {
		return err
	}
	return ValidateDepOrder(o.DepOrder)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.CellSize <= 0 {
		o.CellSize = DefaultCellSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// ValidateAndSetDefaults checks every option for the full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// IsNodelink returns true if graphical formats go through Graphviz.
func (o *Options) IsNodelink() bool {
	return o.Style == StyleNodelink
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(frontiers []string) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Frontiers: frontiers,
		DepOrder:  o.DepOrder,
		MaxRows:   o.MaxRows,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format: format,
		Labels: !o.NoLabels,
	}
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		if o.IsNodelink() {
			k.Format = o.Style + ":" + format
			k.Detailed = o.Detailed
		} else {
			k.CellSize = o.CellSize
			k.Detailed = o.Interactive
		}
	case FormatDOT:
		k.Detailed = o.Detailed
	case FormatTXT:
		k.Detailed = o.Color
	}
	return k
}

// datasetHash returns the content hash of a dataset as used in cache keys.
func datasetHash(ds *lgio.Dataset) (string, error) {
	var buf bytes.Buffer
	if err := lgio.WriteDataset(ds, &buf, lgio.FormatJSON); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}
