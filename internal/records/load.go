package records

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"rdmcal/internal/events"
	appLog "rdmcal/internal/log"
)

// LoadDir reads every *.yaml / *.yml file in dir as a single event record.
// See LoadFS.
func LoadDir(dir string) ([]events.Record, []error, error) {
	if dir == "" {
		return nil, nil, errors.New("records: data dir is empty")
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads every *.yaml / *.yml file at the root of fsys in name order.
//
// A file that fails to read or decode is logged and reported in the error
// slice; the remaining files are still loaded. Files whose document has no
// `next` section are skipped silently, matching the site build, which only
// lists events with an upcoming occurrence. The final error is non-nil only
// when the directory itself cannot be listed.
func LoadFS(fsys fs.FS) ([]events.Record, []error, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("records: list data dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	recs := make([]events.Record, 0, len(names))
	errs := make([]error, 0)

	for _, name := range names {
		rec, ok, perr := loadFile(fsys, name)
		if perr != nil {
			// Log and skip this file, but keep loading others.
			appLog.Error("record file skipped", perr, "file", name)
			errs = append(errs, perr)
			continue
		}
		if !ok {
			appLog.Debug("record file has no next occurrence", "file", name)
			continue
		}
		recs = append(recs, rec)
	}

	appLog.Info("records loaded", "files", len(names), "records", len(recs), "failed", len(errs))
	return recs, errs, nil
}

func loadFile(fsys fs.FS, name string) (events.Record, bool, error) {
	var rec events.Record

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return rec, false, fmt.Errorf("%s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return rec, false, fmt.Errorf("%s: %w", name, err)
	}
	rec.Source = name
	if rec.Next == nil {
		return rec, false, nil
	}
	return rec, true, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
