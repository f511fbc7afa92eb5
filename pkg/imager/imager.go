// Package imager collects the images referenced by an export and downloads
// remote ones next to the generated code.
package imager

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kataras/design-tagger/pkg/export"
)

const defaultConcurrency = 5

// Config holds configuration for image downloads.
type Config struct {
	OutputDir   string // local directory, default "assets"
	PublicPath  string // prefix written into node sources, default the base name of OutputDir
	Concurrency int    // parallel downloads, default 5
	Client      *http.Client
}

// Asset is one downloaded image.
type Asset struct {
	NodeID   string
	NodeName string
	URL      string
	FileName string
}

// Result holds the results of a download run.
type Result struct {
	Assets []Asset
	Errors []error // non-fatal per-image download failures
}

// Collect returns the nodes of the forest that carry an image source, in
// depth-first pre-order.
func Collect(nodes []*export.Node) []*export.Node {
	var out []*export.Node
	export.Walk(nodes, func(n *export.Node, _ int) {
		if n.Source != "" {
			out = append(out, n)
		}
	})
	return out
}

func isRemote(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Download fetches every http(s) image source of the forest into
// cfg.OutputDir and rewrites the source of each downloaded node to its local
// path. Sources that are not URLs are left alone. A failed image is recorded
// in Result.Errors and keeps its remote source.
func Download(ctx context.Context, nodes []*export.Node, cfg Config) (*Result, error) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "assets"
	}
	if cfg.PublicPath == "" {
		cfg.PublicPath = filepath.Base(cfg.OutputDir)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}

	var remote []*export.Node
	for _, n := range Collect(nodes) {
		if isRemote(n.Source) {
			remote = append(remote, n)
		}
	}
	result := &Result{}
	if len(remote) == 0 {
		return result, nil
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", cfg.OutputDir, err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		sem       = make(chan struct{}, cfg.Concurrency)
		usedNames = make(map[string]int) // track filename collisions
		order     = make(map[string]int)
		saved     = make(map[string]string) // source -> file name, guarded by mu
	)

	for i, n := range remote {
		if _, ok := order[n.Source]; ok {
			continue // same image used twice, downloaded once
		}
		order[n.Source] = i

		fileName := uniqueName(usedNames, buildFileName(n.ElementName, n.ElementID, detectExtensionFromURL(n.Source)))

		wg.Add(1)
		go func(n *export.Node, src, fileName string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			destPath := filepath.Join(cfg.OutputDir, fileName)
			if err := downloadFile(ctx, cfg.Client, src, destPath); err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Errorf("failed to download %s: %w", src, err))
				mu.Unlock()
				return
			}

			mu.Lock()
			saved[src] = fileName
			result.Assets = append(result.Assets, Asset{
				NodeID:   n.ElementID,
				NodeName: n.ElementName,
				URL:      src,
				FileName: fileName,
			})
			mu.Unlock()
		}(n, n.Source, fileName)
	}
	wg.Wait()

	sort.Slice(result.Assets, func(i, j int) bool {
		return order[result.Assets[i].URL] < order[result.Assets[j].URL]
	})
	for _, n := range remote {
		if fileName := saved[n.Source]; fileName != "" {
			n.Source = path.Join(filepath.ToSlash(cfg.PublicPath), fileName)
		}
	}
	return result, nil
}

// uniqueName appends -2, -3, ... to names already handed out.
func uniqueName(used map[string]int, fileName string) string {
	count, exists := used[fileName]
	used[fileName] = count + 1
	if !exists {
		return fileName
	}
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	for {
		count++
		candidate := fmt.Sprintf("%s-%d%s", base, count, ext)
		if _, taken := used[candidate]; !taken {
			used[candidate] = 1
			return candidate
		}
	}
}

// downloadFile performs an HTTP GET and saves the response body to destPath.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d downloading image", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", destPath, err)
	}

	_, err = io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// Never leave a truncated image behind.
		os.Remove(destPath)
		return fmt.Errorf("failed to write file %q: %w", destPath, err)
	}
	return nil
}

var imageExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true, "svg": true, "avif": true,
}

// detectExtensionFromURL returns the image extension of the URL path,
// defaulting to png.
func detectExtensionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "png"
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if imageExtensions[ext] {
		return ext
	}
	// Some CDNs only tell the type through a format query parameter.
	if exts, _ := mime.ExtensionsByType("image/" + u.Query().Get("format")); len(exts) > 0 {
		if e := strings.TrimPrefix(exts[0], "."); imageExtensions[e] {
			return e
		}
	}
	return "png"
}

// buildFileName creates a sanitized filename from a node name,
// falling back to the node id if the name is empty.
func buildFileName(nodeName, nodeID, ext string) string {
	name := toKebabCase(nodeName)
	if name == "" {
		name = toKebabCase(nodeID)
	}
	if name == "" {
		name = "image"
	}
	return name + "." + ext
}

// toKebabCase converts a string to kebab-case format (lowercase with hyphens).
func toKebabCase(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "-", "_", "-", ":", "-").Replace(s)

	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return strings.Trim(result.String(), "-")
}
