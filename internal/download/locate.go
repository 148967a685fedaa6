package download

import (
	"os"
	"path/filepath"
	"strings"
)

// partialSuffixes are the in-progress markers the engine (or its external
// downloaders) leave beside the real output. A file carrying one of these is
// never a servable artifact.
var partialSuffixes = []string{".part", ".ytdl", ".tmp", ".temp", ".aria2"}

// Locate finds the artifact the engine wrote for the given job identifier.
// The engine chooses the final container extension itself (post-merge), so
// only the "jobID." prefix is predictable. Partial/temporary files are
// excluded, and when several candidates remain (stray intermediates from a
// merge), the most recently modified one wins. Returns false when no
// qualifying file exists.
func Locate(dir string, jobID string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	var (
		bestPath string
		found    bool
	)
	var bestModTime int64

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, jobID+".") || isPartial(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if modTime := info.ModTime().UnixNano(); !found || modTime > bestModTime {
			bestPath = filepath.Join(dir, name)
			bestModTime = modTime
			found = true
		}
	}

	return bestPath, found
}

func isPartial(name string) bool {
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}
