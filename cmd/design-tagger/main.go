package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	designtagger "github.com/kataras/design-tagger"
	"github.com/kataras/design-tagger/pkg/bridge"
	"github.com/kataras/design-tagger/pkg/codegen"
	"github.com/kataras/design-tagger/pkg/config"
	"github.com/kataras/design-tagger/pkg/export"
	"github.com/kataras/design-tagger/pkg/props"
	"github.com/kataras/design-tagger/pkg/tags"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = config.Version

var (
	configFile     string
	tagsFile       string
	inputFile      string
	nodeIDs        string
	outputDir      string
	order          string
	dedup          string
	downloadImages bool
	markdownFile   string
	msgpackFile    string
	serveAddr      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "design-tagger",
		Short: "Turn tagged design elements into HTML and CSS",
		Long:  "A tool to tag design tool shapes with HTML elements and export the tagged tree as an HTML/CSS code pair",
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "Config file (optional)")
	rootCmd.PersistentFlags().StringVarP(&tagsFile, "tags", "t", "tags.yaml", "Tag file (YAML or JSON)")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the tagged elements of a document as HTML, CSS and JSON",
		Run:   runExport,
	}
	exportCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Document file or URL (required)")
	exportCmd.Flags().StringVarP(&nodeIDs, "node-ids", "n", "", "Comma-separated shape IDs to export (optional, exports every root shape by default)")
	exportCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides the config file)")
	exportCmd.Flags().StringVar(&order, "order", "", "Sibling order: native or visual")
	exportCmd.Flags().StringVar(&dedup, "dedup", "", "CSS de-duplication: exact or selector")
	exportCmd.Flags().BoolVar(&downloadImages, "download-images", false, "Download remote images next to the generated code")
	exportCmd.Flags().StringVar(&markdownFile, "markdown", "", "Also write a markdown report with this file name")
	exportCmd.Flags().StringVar(&msgpackFile, "msgpack", "", "Also write the export as MessagePack with this file name")
	exportCmd.MarkFlagRequired("input")

	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the tagged tree of a document",
		Run:   runTree,
	}
	treeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Document file or URL (required)")
	treeCmd.Flags().StringVarP(&nodeIDs, "node-ids", "n", "", "Comma-separated shape IDs to print (optional)")
	treeCmd.MarkFlagRequired("input")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plugin bridge over HTTP",
		Run:   runServe,
	}
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (overrides the config file)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("design-tagger version %s\n", version)
		},
	}

	rootCmd.AddCommand(exportCmd, treeCmd, newTagCmd(), serveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newTagCmd() *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage the tag file",
	}

	applyCmd := &cobra.Command{
		Use:   "apply <shape-id> <tag> [name=value...]",
		Short: "Tag a shape with an HTML element and attributes",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			attrs, err := parseAttributes(args[2:])
			if err != nil {
				fail(err)
			}
			store := loadTags()
			if err := store.Apply(args[0], args[1], attrs); err != nil {
				fail(err)
			}
			saveTags(store)
			color.New(color.FgGreen).Printf("✓ Tagged %s as <%s>\n", args[0], strings.ToLower(args[1]))
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <shape-id>...",
		Short: "Remove the tag of one or more shapes",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store := loadTags()
			for _, id := range args {
				if store.Remove(id) {
					color.New(color.FgGreen).Printf("✓ Removed tag of %s\n", id)
				} else {
					color.New(color.FgYellow).Printf("⚠ %s is not tagged\n", id)
				}
			}
			saveTags(store)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every tag",
		Run: func(cmd *cobra.Command, args []string) {
			store := loadTags()
			n := store.Len()
			store.Clear()
			saveTags(store)
			color.New(color.FgGreen).Printf("✓ Removed %d tag(s)\n", n)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the tagged shapes",
		Run: func(cmd *cobra.Command, args []string) {
			entries := loadTags().Snapshot().Entries()
			if len(entries) == 0 {
				color.New(color.FgYellow).Println("No tagged elements")
				return
			}
			cyan := color.New(color.FgCyan)
			for _, e := range entries {
				cyan.Printf("  %s", e.ID)
				fmt.Printf(" <%s>", e.Tag)
				if e.Attributes.Len() > 0 {
					fmt.Printf(" %s", e.Attributes)
				}
				fmt.Println()
			}
		},
	}

	tagCmd.AddCommand(applyCmd, removeCmd, clearCmd, listCmd)
	return tagCmd
}

func runExport(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	cyan.Println("\n🏷  Design Tagger")
	cyan.Println("================")
	cyan.Println()

	cfg := loadConfig()
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if order != "" {
		cfg.Order = export.Order(order)
	}
	if dedup != "" {
		cfg.CSS.Dedup = codegen.Dedup(dedup)
	}
	if downloadImages {
		cfg.Images.Download = true
	}
	if markdownFile != "" {
		cfg.Output.Markdown = markdownFile
	}
	if msgpackFile != "" {
		cfg.Output.Msgpack = msgpackFile
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	var selection []string
	if nodeIDs != "" {
		selection = designtagger.ParseNodeIDs(nodeIDs)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := designtagger.Run(ctx, designtagger.Options{
		Input:     inputFile,
		Selection: selection,
		TagsFile:  tagsFile,
		Config:    cfg,
		Logger:    &cliLogger{},
	})
	if err != nil {
		if errors.Is(err, designtagger.ErrEmptySelection) || errors.Is(err, designtagger.ErrNoTaggedElements) {
			yellow.Printf("⚠ %v\n", err)
			return
		}
		fail(err)
	}

	// Display export stats.
	cyan.Println("\n📊 Export Summary:")
	fmt.Printf("  • Elements: %d\n", export.Count(result.Export.Tree))
	if result.Report != nil {
		fmt.Printf("  • CSS Rules: %d (%d declarations)\n", result.Report.Rules, result.Report.Declarations)
		if n := len(result.Report.DuplicateSelectors); n > 0 {
			fmt.Printf("  • Duplicate Selectors: %d\n", n)
		}
	}
	if len(result.Assets) > 0 {
		fmt.Printf("  • Downloaded Images: %d\n", len(result.Assets))
	}

	green.Printf("\n💾 Writing to %s... ", cfg.Output.Dir)
	written, err := result.WriteFiles(cfg)
	if err != nil {
		color.New(color.FgRed).Printf("✗\n")
		fail(err)
	}
	green.Println("✓")
	for _, path := range written {
		fmt.Printf("  • %s\n", path)
	}

	green.Printf("\n✨ Successfully exported %d element(s)\n\n", export.Count(result.Export.Tree))
}

func runTree(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	doc, err := designtagger.LoadDocument(context.Background(), inputFile, cfg.Token, nil)
	if err != nil {
		fail(err)
	}
	if nodeIDs != "" {
		var missing []string
		doc, missing = doc.Select(designtagger.ParseNodeIDs(nodeIDs))
		for _, id := range missing {
			color.New(color.FgYellow).Printf("⚠ Selected shape %s not found\n", id)
		}
	}

	nodes := export.BuildTree(doc.Shapes, loadTags().Snapshot())
	if len(nodes) == 0 {
		color.New(color.FgYellow).Printf("⚠ %v\n", designtagger.ErrNoTaggedElements)
		return
	}
	fmt.Print(export.Print(nodes))
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	srv := bridge.New(cfg, &cliLogger{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, serveAddr); err != nil {
		fail(err)
	}
}

// parseAttributes parses name=value pairs, keeping their order.
func parseAttributes(pairs []string) (*props.Map, error) {
	attrs := &props.Map{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid attribute %q, expected name=value", pair)
		}
		attrs.Set(strings.TrimSpace(name), value)
	}
	return attrs, nil
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		fail(err)
	}
	return cfg
}

func loadTags() *tags.Store {
	store, err := tags.LoadFile(tagsFile)
	if err != nil {
		fail(err)
	}
	return store
}

func saveTags(store *tags.Store) {
	if err := tags.SaveFile(tagsFile, store); err != nil {
		fail(err)
	}
}

func fail(err error) {
	color.New(color.FgRed).Printf("Error: %v\n", err)
	os.Exit(1)
}

// cliLogger implements designtagger.Logger with colored terminal output.
type cliLogger struct{}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Printf("✗ "+format+"\n", args...)
}
