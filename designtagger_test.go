package designtagger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kataras/design-tagger/pkg/config"
	"github.com/kataras/design-tagger/pkg/design"
	"github.com/kataras/design-tagger/pkg/export"
	"github.com/kataras/design-tagger/pkg/props"
	"github.com/kataras/design-tagger/pkg/tags"

	"github.com/vmihailenco/msgpack/v5"
)

const selectionJSON = `{
  "fileName": "Landing",
  "pageName": "Home",
  "shapes": [
    {
      "id": "1:1", "name": "Hero", "type": "FRAME",
      "x": 0, "y": 0, "width": 400, "height": 200,
      "fills": [{"type": "SOLID", "color": "#FFFFFF"}],
      "children": [
        {"id": "1:3", "name": "Title", "type": "TEXT", "x": 0, "y": 0, "width": 100, "height": 50,
         "characters": "Welcome", "fontSize": 32},
        {"id": "1:2", "name": "Wrapper", "type": "GROUP", "x": 200, "y": 0, "width": 100, "height": 50, "children": [
          {"id": "1:4", "name": "Play", "type": "TEXT", "x": 200, "y": 0, "width": 100, "height": 50,
           "characters": "Play"}
        ]}
      ]
    }
  ]
}`

type recordingLogger struct {
	infos, warns, errors []string
}

func (l *recordingLogger) Infof(f string, a ...any)  { l.infos = append(l.infos, fmt.Sprintf(f, a...)) }
func (l *recordingLogger) Warnf(f string, a ...any)  { l.warns = append(l.warns, fmt.Sprintf(f, a...)) }
func (l *recordingLogger) Errorf(f string, a ...any) { l.errors = append(l.errors, fmt.Sprintf(f, a...)) }

func fixedNow() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

func parseSelection(t *testing.T) *design.Document {
	t.Helper()
	doc, err := design.Parse([]byte(selectionJSON), design.FormatJSON)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func taggedStore(t *testing.T) *tags.Store {
	t.Helper()
	store := tags.NewStore()
	for _, e := range []tags.Entry{
		{ID: "1:1", Tag: "section", Attributes: props.New("className", "hero")},
		{ID: "1:3", Tag: "h1"},
		{ID: "1:4", Tag: "button", Attributes: props.New("type", "button")},
	} {
		if err := store.Apply(e.ID, e.Tag, e.Attributes); err != nil {
			t.Fatalf("Apply(%s) error = %v", e.ID, err)
		}
	}
	return store
}

func TestExport(t *testing.T) {
	logger := &recordingLogger{}
	result, err := Export(context.Background(), parseSelection(t), taggedStore(t).Snapshot(), Options{Now: fixedNow, Logger: logger})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	meta := result.Export.Metadata
	if meta.PluginName != "Design Tagger" || meta.FileName != "Landing" || meta.PageName != "Home" || meta.ExportDate != "2024-05-01T10:00:00Z" {
		t.Errorf("Export() metadata = %+v", meta)
	}

	// The untagged group never materializes.
	if got := export.Count(result.Export.Tree); got != 3 {
		t.Errorf("Export() element count = %d, want 3", got)
	}
	root := result.Export.Tree[0]
	if root.Tag != "section" || len(root.Children) != 2 {
		t.Fatalf("Export() root = %s with %d children, want section with 2", root.Tag, len(root.Children))
	}

	// The hero has no auto-layout metadata, so its layout is inferred.
	if got := root.Styles.Value("display"); got != "flex" {
		t.Errorf("root display = %q, want flex", got)
	}
	if got := root.Styles.Value("gap"); got != "100px" {
		t.Errorf("root gap = %q, want 100px", got)
	}

	wantHTML := strings.Join([]string{
		`<section class="hero">`,
		`  <h1>Welcome</h1>`,
		`  <button type="button">Play</button>`,
		`</section>`,
	}, "\n")
	if result.HTML != wantHTML {
		t.Errorf("Export() HTML =\n%s\nwant\n%s", result.HTML, wantHTML)
	}
	if !strings.HasPrefix(result.CSS, ".hero {\n") {
		t.Errorf("Export() CSS should start with the .hero rule:\n%s", result.CSS)
	}
	if !strings.Contains(result.CSS, ".title {\n") || !strings.Contains(result.CSS, "font-size: 32px;") {
		t.Errorf("Export() CSS misses the title rule:\n%s", result.CSS)
	}

	if result.Report == nil || result.Report.Elements != 3 {
		t.Errorf("Export() report = %+v, want 3 elements", result.Report)
	}
	if !strings.Contains(result.Markdown, "```html\n"+wantHTML) {
		t.Errorf("Export() markdown misses the HTML block")
	}
	if len(logger.warns) != 0 || len(logger.errors) != 0 {
		t.Errorf("Export() logged warnings %v, errors %v", logger.warns, logger.errors)
	}
}

func TestExportRecoverableErrors(t *testing.T) {
	doc := parseSelection(t)
	tests := []struct {
		name      string
		doc       *design.Document
		store     *tags.Store
		selection []string
		want      error
	}{
		{"no shapes", &design.Document{}, taggedStore(t), nil, ErrEmptySelection},
		{"unknown selection", doc, taggedStore(t), []string{"9:9"}, ErrEmptySelection},
		{"no tags", doc, tags.NewStore(), nil, ErrNoTaggedElements},
		{"tags outside the selection", doc, taggedStore(t), []string{"1:2"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Export(context.Background(), tt.doc, tt.store.Snapshot(), Options{Selection: tt.selection})
			if err != tt.want {
				t.Errorf("Export() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExportSelectionAndUnresolvedTags(t *testing.T) {
	store := taggedStore(t)
	if err := store.Apply("7:7", "footer", nil); err != nil {
		t.Fatal(err)
	}
	logger := &recordingLogger{}

	result, err := Export(context.Background(), parseSelection(t), store.Snapshot(), Options{
		Selection: []string{"1:4", "8:8"},
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if result.HTML != `<button type="button">Play</button>` {
		t.Errorf("Export() HTML = %q", result.HTML)
	}

	want := []string{
		"Selected shape 8:8 not found",
		"Tag on 1:1 skipped: shape not in the selection",
		"Tag on 1:3 skipped: shape not in the selection",
		"Tag on 7:7 skipped: shape not in the selection",
	}
	if !reflect.DeepEqual(logger.warns, want) {
		t.Errorf("Export() warnings = %q, want %q", logger.warns, want)
	}
}

func TestExportNestedSelection(t *testing.T) {
	store := taggedStore(t)
	logger := &recordingLogger{}

	result, err := Export(context.Background(), parseSelection(t), store.Snapshot(), Options{
		Selection: []string{"1:4", "1:1", "1:3"},
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	// Each tagged shape materializes once, under the outermost selected root.
	if got, want := export.Count(result.Export.Tree), store.Len(); got != want {
		t.Errorf("Export() element count = %d, want %d", got, want)
	}
	if len(result.Export.Tree) != 1 || result.Export.Tree[0].Tag != "section" {
		t.Errorf("Export() roots = %d, want the section only", len(result.Export.Tree))
	}
	if n := strings.Count(result.HTML, "<button"); n != 1 {
		t.Errorf("Export() HTML renders the button %d times:\n%s", n, result.HTML)
	}
	if len(logger.warns) != 0 {
		t.Errorf("Export() warnings = %q", logger.warns)
	}
}

func TestRunWritesFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "selection.json")
	if err := os.WriteFile(input, []byte(selectionJSON), 0644); err != nil {
		t.Fatal(err)
	}
	tagsFile := filepath.Join(dir, "tags.yaml")
	if err := tags.SaveFile(tagsFile, taggedStore(t)); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Output.Msgpack = "export.msgpack"
	cfg.Output.Markdown = "EXPORT.md"

	result, err := Run(context.Background(), Options{Input: input, TagsFile: tagsFile, Config: cfg, Now: fixedNow})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	written, err := result.WriteFiles(cfg)
	if err != nil {
		t.Fatalf("WriteFiles() error = %v", err)
	}
	if len(written) != 5 {
		t.Errorf("WriteFiles() wrote %v, want 5 files", written)
	}

	html, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "index.html"))
	if err != nil || string(html) != result.HTML+"\n" {
		t.Errorf("index.html = %q, %v", html, err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "export.json"))
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Metadata map[string]string `json:"metadata"`
		Tree     []map[string]any  `json:"tree"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export.json: %v", err)
	}
	if decoded.Metadata["fileName"] != "Landing" || len(decoded.Tree) != 1 || decoded.Tree[0]["tag"] != "section" {
		t.Errorf("export.json = %s", data)
	}

	packed, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "export.msgpack"))
	if err != nil {
		t.Fatal(err)
	}
	var unpacked export.Export
	if err := msgpack.Unmarshal(packed, &unpacked); err != nil {
		t.Fatalf("export.msgpack: %v", err)
	}
	if export.Count(unpacked.Tree) != 3 {
		t.Errorf("export.msgpack holds %d elements, want 3", export.Count(unpacked.Tree))
	}
}

func TestRunMissingInput(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Error("Run() without input should fail")
	}
	if _, err := Run(context.Background(), Options{Input: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Error("Run() with a missing document should fail")
	}
}

func TestParseNodeIDs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "1:2", []string{"1:2"}},
		{"multiple with spaces", " 1:2 , 3:4,5:6 ", []string{"1:2", "3:4", "5:6"}},
		{"blanks dropped", "1:2,,  ,3:4", []string{"1:2", "3:4"}},
		{"duplicates dropped", "1:2,3:4,1:2", []string{"1:2", "3:4"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseNodeIDs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseNodeIDs(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
