package designtagger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kataras/design-tagger/pkg/codegen"
	"github.com/kataras/design-tagger/pkg/config"
	"github.com/kataras/design-tagger/pkg/design"
	"github.com/kataras/design-tagger/pkg/export"
	"github.com/kataras/design-tagger/pkg/formatter"
	"github.com/kataras/design-tagger/pkg/imager"
	"github.com/kataras/design-tagger/pkg/tags"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrEmptySelection is returned when the document holds no shapes to export.
	ErrEmptySelection = errors.New("nothing selected: select at least one element to export")
	// ErrNoTaggedElements is returned when none of the selected shapes is tagged.
	ErrNoTaggedElements = errors.New("no tagged elements: tag at least one element before exporting")
)

// Options configures the export.
type Options struct {
	Input     string   // document file path or http(s) URL
	Selection []string // shape ids to export, empty = every root shape of the document
	TagsFile  string   // YAML or JSON tag file, ignored when Tags is set
	Tags      *tags.Store
	Config    *config.Config   // nil = config.Default()
	Now       func() time.Time // export date, defaults to time.Now
	Logger    Logger           // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the export output.
type Result struct {
	Document *design.Document
	Export   *export.Export
	HTML     string
	CSS      string
	Markdown string
	Report   *codegen.Report // nil when the generated code could not be parsed back
	Assets   []imager.Asset
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

// Run loads the document and tags named by opts and exports them.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Input == "" {
		return nil, errors.New("no input document")
	}

	doc, err := LoadDocument(ctx, opts.Input, opts.Config.Token, opts.Logger)
	if err != nil {
		return nil, err
	}
	opts.logInfo("Document: %s (%d root shape(s))", displayName(doc), len(doc.Shapes))

	store := opts.Tags
	if store == nil {
		if opts.TagsFile == "" {
			store = tags.NewStore()
		} else {
			opts.logInfo("Loading tags from %s...", opts.TagsFile)
			if store, err = tags.LoadFile(opts.TagsFile); err != nil {
				return nil, fmt.Errorf("load tags: %w", err)
			}
		}
	}
	opts.logInfo("Tagged elements: %d", store.Len())

	return Export(ctx, doc, store.Snapshot(), opts)
}

// Export runs the pipeline on an already loaded document: it rebuilds the
// tagged tree, downloads images when configured, and renders HTML, CSS and
// the markdown report. Input and TagsFile of opts are ignored.
func Export(ctx context.Context, doc *design.Document, snap tags.Snapshot, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if len(opts.Selection) > 0 {
		doc = selectShapes(doc, opts.Selection, &opts)
	}
	if len(doc.Shapes) == 0 {
		return nil, ErrEmptySelection
	}

	for _, id := range snap.Unresolved(doc) {
		opts.logWarn("Tag on %s skipped: shape not in the selection", id)
	}

	opts.logInfo("Rebuilding the tagged tree...")
	exp := export.Assemble(doc, snap, export.Options{
		PluginName: cfg.Plugin.Name,
		Version:    cfg.Plugin.Version,
		Order:      cfg.Order,
		Thresholds: cfg.Layout,
		Now:        opts.Now,
	})
	if len(exp.Tree) == 0 {
		return nil, ErrNoTaggedElements
	}
	opts.logInfo("Exported %d element(s)", export.Count(exp.Tree))

	result := &Result{Document: doc, Export: exp}

	// Image download is opt-in.
	if cfg.Images.Download {
		dir := cfg.Images.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.Output.Dir, dir)
		}
		opts.logInfo("Downloading images to %s...", dir)
		dl, err := imager.Download(ctx, exp.Tree, imager.Config{
			OutputDir:   dir,
			PublicPath:  filepath.Base(dir),
			Concurrency: cfg.Images.Concurrency,
		})
		if err != nil {
			return nil, fmt.Errorf("download images: %w", err)
		}
		for _, dlErr := range dl.Errors {
			opts.logWarn("%v", dlErr)
		}
		opts.logInfo("Downloaded %d image(s)", len(dl.Assets))
		result.Assets = dl.Assets
	}

	opts.logInfo("Generating code...")
	gen := codegen.Generator{Dedup: cfg.CSS.Dedup}
	result.HTML = gen.HTML(exp.Tree)
	result.CSS = gen.CSS(exp.Tree)

	report, err := codegen.Verify(result.HTML, result.CSS)
	if err != nil {
		opts.logError("Could not verify generated code: %v", err)
	} else {
		result.Report = report
		for _, sel := range report.DuplicateSelectors {
			opts.logWarn("Selector %s is defined more than once", sel)
		}
	}

	result.Markdown = formatter.ToMarkdown(exp, result.HTML, result.CSS)
	return result, nil
}

// LoadDocument reads a document from a local file or downloads it when
// input is an http(s) URL. token is only used for downloads.
func LoadDocument(ctx context.Context, input, token string, logger Logger) (*design.Document, error) {
	opts := Options{Logger: logger}
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		opts.logInfo("Fetching document from %s...", input)
		doc, err := design.NewClient(token).Fetch(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("fetch document: %w", err)
		}
		return doc, nil
	}

	opts.logInfo("Reading document %s...", input)
	doc, err := design.Load(input)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

// selectShapes returns a copy of doc whose roots are the shapes with the
// given ids, in that order. Unknown ids are reported and skipped, shapes
// nested under another selected shape are exported once, under it.
func selectShapes(doc *design.Document, ids []string, opts *Options) *design.Document {
	selected, missing := doc.Select(ids)
	for _, id := range missing {
		opts.logWarn("Selected shape %s not found", id)
	}
	return selected
}

func displayName(doc *design.Document) string {
	name := doc.FileName
	if name == "" {
		name = "untitled"
	}
	if doc.PageName != "" {
		name += " / " + doc.PageName
	}
	return name
}

// WriteFiles writes the generated artifacts named in cfg.Output to disk and
// returns the written paths. Empty file names are skipped.
func (r *Result) WriteFiles(cfg *config.Config) ([]string, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	files := []struct {
		name   string
		encode func() ([]byte, error)
	}{
		{cfg.Output.HTML, func() ([]byte, error) { return []byte(r.HTML + "\n"), nil }},
		{cfg.Output.CSS, func() ([]byte, error) { return []byte(r.CSS + "\n"), nil }},
		{cfg.Output.JSON, func() ([]byte, error) { return json.MarshalIndent(r.Export, "", "  ") }},
		{cfg.Output.Msgpack, func() ([]byte, error) { return msgpack.Marshal(r.Export) }},
		{cfg.Output.Markdown, func() ([]byte, error) { return []byte(r.Markdown), nil }},
	}

	var written []string
	for _, f := range files {
		path := cfg.OutputPath(f.name)
		if path == "" {
			continue
		}
		data, err := f.encode()
		if err != nil {
			return written, fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return written, fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// ParseNodeIDs parses a comma-separated string of shape ids and returns a
// slice without blanks or duplicates.
func ParseNodeIDs(nodeIDsStr string) []string {
	parts := strings.Split(nodeIDsStr, ",")
	result := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" && !seen[trimmed] {
			seen[trimmed] = true
			result = append(result, trimmed)
		}
	}

	return result
}
