package design

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestNormalizeMixedAndWrongTypes(t *testing.T) {
	s := Normalize(map[string]any{
		"id":      "1:1",
		"type":    "rect",
		"x":       "12.4",
		"y":       "mixed",
		"width":   true,
		"height":  float64(40),
		"opacity": "nope",
		"fills": []any{
			map[string]any{"fillColor": "mixed"},
			map[string]any{"color": "#FF0000", "opacity": 0.5},
		},
	})

	if s.Kind != KindRectangle {
		t.Errorf("Kind = %v, want %v", s.Kind, KindRectangle)
	}
	if s.X == nil || *s.X != 12.4 {
		t.Errorf("X = %v, want 12.4", s.X)
	}
	if s.Y != nil {
		t.Errorf("Y = %v, want nil for mixed", *s.Y)
	}
	if s.Width != nil {
		t.Errorf("Width = %v, want nil for bool", *s.Width)
	}
	if s.Opacity != nil {
		t.Errorf("Opacity = %v, want nil", *s.Opacity)
	}
	if len(s.Fills) != 1 || *s.Fills[0].Color != "#FF0000" || *s.Fills[0].Opacity != 0.5 {
		t.Errorf("Fills = %+v, want one red fill at 0.5", s.Fills)
	}
}

func TestNormalizeAliases(t *testing.T) {
	s := Normalize(map[string]any{
		"kind": "frame",
		"r1":   4, "r2": 4, "r3": 4, "r4": 4,
		"strokes": []any{map[string]any{
			"strokeColor":     "#000000",
			"strokeWidth":     "2",
			"strokeAlignment": "inner",
			"strokeDashes":    []any{4, 2},
		}},
		"blur":    map[string]any{"value": 3},
		"shadows": []any{map[string]any{"style": "drop-shadow", "offsetX": 1, "offsetY": 2, "blur": 3, "color": map[string]any{"color": "#000000", "opacity": 0.25}}},
		"children": []any{
			map[string]any{"id": "c", "type": "text", "text": map[string]any{"characters": "Hi", "fontSize": 14}},
		},
	})

	if s.Kind != KindFrame {
		t.Errorf("Kind = %v, want %v", s.Kind, KindFrame)
	}
	for i, c := range s.Corners {
		if c == nil || *c != 4 {
			t.Errorf("Corners[%d] = %v, want 4", i, c)
		}
	}
	if len(s.Strokes) != 1 {
		t.Fatalf("Strokes len = %d, want 1", len(s.Strokes))
	}
	st := s.Strokes[0]
	if st.Alignment != StrokeInside || *st.Width != 2 || len(st.DashPattern) != 2 {
		t.Errorf("Stroke = %+v", st)
	}
	if len(s.Effects) != 1 || s.Effects[0].Type != EffectBlur || s.Effects[0].Radius != 3 {
		t.Errorf("Effects = %+v, want one blur of 3", s.Effects)
	}
	if len(s.Shadows) != 1 || *s.Shadows[0].Color != "#000000" || *s.Shadows[0].Opacity != 0.25 {
		t.Errorf("Shadows = %+v", s.Shadows)
	}
	if len(s.Children) != 1 || s.Children[0].Text == nil {
		t.Fatalf("Children = %+v, want one text child", s.Children)
	}
	if got := s.Children[0].Text; got.Content != "Hi" || got.FontSize != "14" {
		t.Errorf("Text = %+v", got)
	}
}

func TestNormalizeGridTracks(t *testing.T) {
	s := Normalize(map[string]any{
		"type": "board",
		"grid": map[string]any{
			"rows": 2,
			"columns": []any{
				map[string]any{"type": "flex", "value": 1},
				map[string]any{"type": "fixed", "value": 120.4},
				map[string]any{"type": "auto"},
			},
		},
	})
	if s.Grid == nil {
		t.Fatal("Grid = nil")
	}
	if s.Grid.RowCount != 2 || len(s.Grid.Rows) != 0 {
		t.Errorf("Rows = %v (%d), want count 2", s.Grid.Rows, s.Grid.RowCount)
	}
	want := []string{"1fr", "120px", "auto"}
	if len(s.Grid.Columns) != len(want) {
		t.Fatalf("Columns = %v, want %v", s.Grid.Columns, want)
	}
	for i := range want {
		if s.Grid.Columns[i] != want[i] {
			t.Errorf("Columns[%d] = %v, want %v", i, s.Grid.Columns[i], want[i])
		}
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Format
	}{
		{"json file", "doc.json", FormatJSON},
		{"yaml file", "doc.YAML", FormatYAML},
		{"yml url with query", "https://example.com/doc.yml?x=1", FormatYAML},
		{"no extension", "doc", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatOf(tt.in); got != tt.want {
				t.Errorf("FormatOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		format     Format
		wantShapes int
		wantFile   string
		wantErr    bool
	}{
		{"wrapped json", `{"fileName":"Kit","pageName":"Home","shapes":[{"id":"1"},{"id":"2"}]}`, FormatJSON, 2, "Kit", false},
		{"array json", `[{"id":"1"}]`, FormatJSON, 1, "", false},
		{"bare shape", `{"id":"1","type":"frame"}`, FormatJSON, 1, "", false},
		{"selection alias yaml", "fileName: Kit\nselection:\n  - id: a\n  - id: b\n", FormatYAML, 2, "Kit", false},
		{"scalar", `42`, FormatJSON, 0, "", true},
		{"broken json", `{`, FormatJSON, 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.data), tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(doc.Shapes) != tt.wantShapes {
				t.Errorf("Parse() shapes = %d, want %d", len(doc.Shapes), tt.wantShapes)
			}
			if doc.FileName != tt.wantFile {
				t.Errorf("Parse() fileName = %v, want %v", doc.FileName, tt.wantFile)
			}
		})
	}
}

func TestLoadDefaultsFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landing.yaml")
	if err := os.WriteFile(path, []byte("- id: \"1\"\n  type: frame\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.FileName != "landing" {
		t.Errorf("Load() fileName = %v, want landing", doc.FileName)
	}
	if doc.Find("1") == nil {
		t.Error("Find(1) = nil")
	}
}

func TestClientFetchRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"shapes":[{"id":"1"}]}`))
	}))
	defer srv.Close()

	c := NewClient("secret")
	c.backoff = time.Millisecond

	doc, err := c.Fetch(context.Background(), srv.URL+"/doc.json")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(doc.Shapes) != 1 {
		t.Errorf("Fetch() shapes = %d, want 1", len(doc.Shapes))
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestClientFetchNoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient("")
	c.backoff = time.Millisecond

	if _, err := c.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("Fetch() error = nil, want error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}
}

func TestDocumentSelect(t *testing.T) {
	leaf := &Shape{ID: "1:3"}
	group := &Shape{ID: "1:2", Children: []*Shape{leaf}}
	frame := &Shape{ID: "1:1", Children: []*Shape{group}}
	other := &Shape{ID: "2:1"}
	doc := &Document{FileName: "Landing", PageName: "Home", Shapes: []*Shape{frame, other}}

	tests := []struct {
		name        string
		ids         []string
		wantRoots   []string
		wantMissing []string
	}{
		{"in order", []string{"2:1", "1:2"}, []string{"2:1", "1:2"}, nil},
		{"descendant after ancestor", []string{"1:1", "1:3"}, []string{"1:1"}, nil},
		{"descendant before ancestor", []string{"1:3", "2:1", "1:1"}, []string{"2:1", "1:1"}, nil},
		{"repeated", []string{"1:2", "1:2"}, []string{"1:2"}, nil},
		{"missing", []string{"9:9", "1:3"}, []string{"1:3"}, []string{"9:9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected, missing := doc.Select(tt.ids)
			var roots []string
			for _, s := range selected.Shapes {
				roots = append(roots, s.ID)
			}
			if !equalStrings(roots, tt.wantRoots) {
				t.Errorf("Select(%v) roots = %v, want %v", tt.ids, roots, tt.wantRoots)
			}
			if !equalStrings(missing, tt.wantMissing) {
				t.Errorf("Select(%v) missing = %v, want %v", tt.ids, missing, tt.wantMissing)
			}
			if selected.FileName != "Landing" || selected.PageName != "Home" {
				t.Errorf("Select() lost the document names: %q, %q", selected.FileName, selected.PageName)
			}
		})
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
