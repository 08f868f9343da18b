// Package hcl implements the HCL manifest loader: it walks a manifest tree,
// parses every .hcl file, evaluates attribute expressions, and translates the
// result into the format-agnostic config model.
package hcl

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/buildmerge/internal/aggregate"
	"github.com/vk/buildmerge/internal/config"
	"github.com/vk/buildmerge/internal/ctxlog"
	"github.com/vk/buildmerge/internal/schema"
)

// Loader loads HCL target manifests.
type Loader struct{}

// NewLoader returns the HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader. root may be a single .hcl file or a
// directory walked recursively; the package path of each target is the
// manifest's directory relative to root.
func (l *Loader) Load(ctx context.Context, root string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading manifests.", "root", root)

	files, err := manifestFiles(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl manifests found under %s", root)
	}

	model := &config.Model{}
	seen := make(map[string]string)
	parser := hclparse.NewParser()

	for _, path := range files {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %s", path, diags.Error())
		}

		var manifest schema.File
		if diags := gohcl.DecodeBody(file.Body, nil, &manifest); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest %s: %s", path, diags.Error())
		}

		pkg := packagePath(root, path)
		for _, block := range manifest.Targets {
			target, err := translateTarget(block, pkg)
			if err != nil {
				return nil, fmt.Errorf("invalid target %q in %s: %w", block.Name, path, err)
			}
			if _, err := aggregate.ParseKind(target.Kind); err != nil {
				return nil, fmt.Errorf("invalid target %q in %s: %w", target.Name, path, err)
			}
			if prev, dup := seen[target.Name]; dup {
				return nil, fmt.Errorf("duplicate target name %q in %s (already declared in %s)", target.Name, path, prev)
			}
			seen[target.Name] = path
			model.Targets = append(model.Targets, target)
		}
		logger.Debug("Manifest decoded.", "path", path, "targets", len(manifest.Targets))
	}

	logger.Info("Manifests loaded.", "files", len(files), "targets", len(model.Targets))
	return model, nil
}

// manifestFiles collects .hcl files under root in deterministic order.
func manifestFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("manifest path: %w", err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking manifest tree: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// packagePath derives the workspace-relative package of a manifest file.
func packagePath(root, file string) string {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return ""
	}
	rel, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
