package manifest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tabview.dev/cli/internal/core/domain/plugin"
	"tabview.dev/cli/internal/core/ports"
)

// Parse reads the tab-separated plugin manifest. The first row is a header
// naming the columns; name, description and url are expected, requirements
// is optional and whitespace-delimited. Bad rows are skipped with a
// warning, not fatal to the load.
func Parse(r io.Reader) ([]plugin.Record, []string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", plugin.ErrManifestUnreadable, err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	if _, ok := col["name"]; !ok {
		return nil, nil, fmt.Errorf("%w: no name column in header", plugin.ErrManifestUnreadable)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		records  []plugin.Record
		warnings []string
		seen     = make(map[string]bool)
		line     = 1
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		name := field(row, "name")
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("line %d: row has no name, skipped", line))
			continue
		}
		if seen[name] {
			warnings = append(warnings, fmt.Sprintf("line %d: duplicate plugin %q, skipped", line, name))
			continue
		}
		url := field(row, "url")
		if url == "" {
			warnings = append(warnings, fmt.Sprintf("line %d: plugin %q has no url, skipped", line, name))
			continue
		}

		seen[name] = true
		records = append(records, plugin.Record{
			Name:         name,
			Description:  field(row, "description"),
			URL:          url,
			Requirements: strings.Fields(field(row, "requirements")),
		})
	}

	return records, warnings, nil
}

// FileSource loads the manifest from a local file.
type FileSource struct {
	Path string
}

func (s *FileSource) Load(ctx context.Context) ([]plugin.Record, []string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", plugin.ErrManifestUnreadable, err)
	}
	defer f.Close()
	return Parse(f)
}

// RemoteSource fetches the manifest from a URL, keeping the last good copy
// on disk at CachePath. When the fetch fails and a cached copy exists, the
// cache is served with a warning instead of failing the load.
type RemoteSource struct {
	URL       string
	CachePath string
	Fetcher   ports.SourceFetcher
	Debug     bool
}

func (s *RemoteSource) Load(ctx context.Context) ([]plugin.Record, []string, error) {
	data, fetchErr := s.Fetcher.Fetch(ctx, s.URL)
	if fetchErr != nil {
		cached, readErr := os.ReadFile(s.CachePath)
		if readErr != nil {
			return nil, nil, fmt.Errorf("%w: %v", plugin.ErrManifestUnreadable, fetchErr)
		}
		if s.Debug {
			fmt.Printf("[DEBUG] Manifest fetch failed (%v), using cache %s\n", fetchErr, s.CachePath)
		}
		records, warnings, err := Parse(bytes.NewReader(cached))
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, fmt.Sprintf("manifest fetch failed (%v), showing cached copy", fetchErr))
		return records, warnings, nil
	}

	records, warnings, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}

	// Cache refresh is best effort, a failure never fails the load.
	if s.CachePath != "" {
		if mkErr := os.MkdirAll(filepath.Dir(s.CachePath), 0755); mkErr == nil {
			if wrErr := os.WriteFile(s.CachePath, data, 0644); wrErr != nil && s.Debug {
				fmt.Printf("[DEBUG] Failed to cache manifest: %v\n", wrErr)
			}
		}
	}

	return records, warnings, nil
}
