package notionpub

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	manifestFileName    = ".notionpub-manifest.json"
	manifestFileVersion = 1
)

// Manifest records what a build wrote to the output directory.
type Manifest struct {
	Version     int             `json:"version"`
	BuildID     string          `json:"build_id"`
	Offline     bool            `json:"offline,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	GeneratedAt time.Time       `json:"generated_at"`
	Pages       []ManifestPage  `json:"pages"`
	Assets      []ManifestAsset `json:"assets"`
	Files       []string        `json:"files"`
}

// ManifestPage is one rendered post.
type ManifestPage struct {
	PageID     string    `json:"page_id"`
	Language   string    `json:"language"`
	Route      string    `json:"route"`
	Output     string    `json:"output"`
	Checksum   string    `json:"checksum"`
	EditedTime time.Time `json:"edited_time,omitempty"`
}

// ManifestAsset is one cached image referenced by a rendered post.
type ManifestAsset struct {
	BlockID string `json:"block_id"`
	Output  string `json:"output"`
	Size    int64  `json:"size"`
}

func newManifest(offline bool, started time.Time) *Manifest {
	return &Manifest{
		Version:   manifestFileVersion,
		BuildID:   uuid.NewString(),
		Offline:   offline,
		StartedAt: started.UTC(),
	}
}

// readManifest loads the manifest of the previous build in dir. A missing
// file yields nil without error.
func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// write stores the manifest in dir with stable ordering.
func (m *Manifest) write(dir string) error {
	sort.Slice(m.Pages, func(i, j int) bool {
		if m.Pages[i].Language == m.Pages[j].Language {
			return m.Pages[i].Route < m.Pages[j].Route
		}
		return m.Pages[i].Language < m.Pages[j].Language
	})
	sort.Slice(m.Assets, func(i, j int) bool {
		return m.Assets[i].BlockID < m.Assets[j].BlockID
	})
	sort.Strings(m.Files)
	m.GeneratedAt = time.Now().UTC()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, manifestFileName), data, 0o644)
}

// outputs lists every file the manifest owns, relative to the output dir.
func (m *Manifest) outputs() map[string]struct{} {
	set := make(map[string]struct{}, len(m.Pages)+len(m.Files))
	for _, p := range m.Pages {
		set[p.Output] = struct{}{}
	}
	for _, f := range m.Files {
		set[f] = struct{}{}
	}
	return set
}

// prune removes files the previous build wrote that this build did not,
// e.g. pages of posts that were unpublished. It returns the removed paths.
func (m *Manifest) prune(prev *Manifest, dir string) []string {
	if prev == nil {
		return nil
	}
	keep := m.outputs()
	var removed []string
	for rel := range prev.outputs() {
		if _, ok := keep[rel]; ok {
			continue
		}
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.Remove(full); err == nil {
			removed = append(removed, rel)
			// Drop the now empty post directory; fails harmlessly otherwise.
			_ = os.Remove(filepath.Dir(full))
		}
	}
	sort.Strings(removed)
	return removed
}
