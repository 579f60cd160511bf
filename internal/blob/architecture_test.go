package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestInfraStoresStayBehindFacade verifies the layering rule for the archive
// backends: every package outside internal/blob must depend on the Store
// interface, never on an internal/infra/blob implementation directly.
func TestInfraStoresStayBehindFacade(t *testing.T) {
	const (
		infraPrefix  = "srtingest/internal/infra/blob"
		facadePrefix = "srtingest/internal/blob"
	)

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "srtingest/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		if strings.HasPrefix(pkg.PkgPath, facadePrefix) || strings.HasPrefix(pkg.PkgPath, infraPrefix) {
			continue
		}
		for importPath := range pkg.Imports {
			if importPath == infraPrefix || strings.HasPrefix(importPath, infraPrefix+"/") {
				violations = append(violations, pkg.PkgPath+" imports "+importPath)
			}
		}
	}

	sort.Strings(violations)
	for _, v := range violations {
		t.Errorf("forbidden infra blob import: %s", v)
	}
}
