package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// ArchiveFiles copies the named local files into the store under
// <prefix>/<runID>/<basename>, tagging each with the run identifier. Used by
// the pipeline runner to keep an immutable copy of each stage boundary CSV.
func ArchiveFiles(ctx context.Context, store Store, prefix, runID string, paths ...string) ([]Info, error) {
	if store == nil {
		return nil, fmt.Errorf("archive store required")
	}
	if runID == "" {
		return nil, fmt.Errorf("run id required")
	}
	infos := make([]Info, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return infos, fmt.Errorf("archive %s: %w", p, err)
		}
		key := path.Join(prefix, runID, filepath.Base(p))
		info, err := store.Put(ctx, key, f, PutOptions{
			ContentType: "text/csv",
			Metadata:    map[string]string{"run_id": runID},
		})
		_ = f.Close()
		if err != nil {
			return infos, fmt.Errorf("archive %s: %w", p, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
