// Package designtagger turns tagged design elements into HTML and CSS.
//
// A design document is a tree of shapes (frames, groups, text, images) as
// reported by a design tool. The user tags some of those shapes with an
// HTML element name and attributes. The export keeps only the tagged
// shapes, reattaching each one to its nearest tagged ancestor, derives CSS
// for every tagged shape from its fills, strokes, effects, text metrics
// and auto-layout metadata, guesses flex layout for plain containers, and
// renders the resulting tree as an HTML fragment plus a stylesheet.
//
// The CLI lives in cmd/design-tagger; this root package exposes the same
// pipeline as a Go API.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named designtagger:
//
//	import "github.com/kataras/design-tagger" // package designtagger
//
// # Quick start
//
//	result, err := designtagger.Run(ctx, designtagger.Options{
//	    Input:    "selection.json",
//	    TagsFile: "tags.yaml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("index.html", []byte(result.HTML), 0644)
//	os.WriteFile("styles.css", []byte(result.CSS), 0644)
//
// [ErrEmptySelection] and [ErrNoTaggedElements] are returned for inputs
// that have nothing to export. Callers usually report them to the user
// rather than treat them as failures.
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output.
//
//	type myLogger struct{}
//	func (l *myLogger) Infof(f string, a ...any)  { log.Printf("[INFO]  "+f, a...) }
//	func (l *myLogger) Warnf(f string, a ...any)  { log.Printf("[WARN]  "+f, a...) }
//	func (l *myLogger) Errorf(f string, a ...any) { log.Printf("[ERROR] "+f, a...) }
//
// # Tagging
//
// Tags are held by a [tags.Store]. The CLI persists them in a YAML or JSON
// tag file between invocations; the bridge server keeps one store per
// session. An export only ever reads a snapshot of the store.
//
// # Configuration
//
// Layout thresholds, sibling ordering, CSS de-duplication, output file
// names and image downloads are read from an optional YAML file, see
// package config.
package designtagger
