package build

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mpvl/unique"
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/jerr"
	"jodin.dev/jodinc/pkg/module"
	"jodin.dev/jodinc/pkg/resolve"
)

// manifestFile is the build manifest's well-known name inside a
// project's TargetDirectory.
const manifestFile = ".jodin-manifest.boltdb"

// FileInput is one source file handed to Build: its path, raw bytes
// (hashed for staleness detection), and already-parsed tree.
type FileInput struct {
	Path   string
	Source []byte
	Tree   *ast.Node
}

// Result summarizes one Build invocation.
type Result struct {
	Compiled []string
	Reused   []string
	Objects  []*module.CompilationObject
}

// Build runs the full incremental build over files: construct the
// dependency graph, compute a topological compilation order, and visit
// each file in turn, skipping ones whose content is unchanged since
// their last compile and whose dependencies didn't themselves just
// recompile. Every file compiled (or reused) feeds its public surface
// forward as preload for the files visited after it — the mechanism
// that lets a later file resolve an earlier file's declarations without
// the two ever being parsed together.
func Build(settings Settings, files []FileInput) (*Result, error) {
	builder := NewGraphBuilder()
	byPath := make(map[string]FileInput, len(files))
	for _, f := range files {
		if err := builder.AddFile(f.Path, f.Tree); err != nil {
			return nil, err
		}
		byPath[f.Path] = f
	}

	graph, err := builder.Build()
	if err != nil {
		return nil, err
	}
	order := graph.TopologicalOrder()

	if err := os.MkdirAll(settings.TargetDirectory, 0o755); err != nil {
		return nil, jerr.ErrBuildIO.New(settings.TargetDirectory)
	}
	manifest, err := OpenManifest(filepath.Join(settings.TargetDirectory, manifestFile))
	if err != nil {
		return nil, err
	}
	defer manifest.Close()

	result := &Result{}
	recompiled := make(map[string]bool, len(order))
	// Precompiled objects on the object path may surface the same symbol
	// more than once (its own .jobj plus its file's .grounds archive);
	// resolution preloading tolerates no duplicates.
	preload, err := loadObjectPath(settings)
	if err != nil {
		return nil, err
	}
	preload = dedupPreload(preload)

	for _, node := range order {
		input := byPath[node.Path]
		deps := graph.Dependencies(node.Path)

		if !needsRecompile(node, input.Source, manifest, recompiled, deps) {
			log.WithField("path", node.Path).Debug("reusing previous compilation")
			result.Reused = append(result.Reused, node.Path)
			preload = appendOutgoing(preload, node.Outgoing)
			continue
		}

		if _, err := resolve.ResolveWithPreload(node.Tree, "", preload); err != nil {
			return nil, err
		}

		objects, outgoing, err := module.CompileFile(node.Tree, settings.TargetDirectory)
		if err != nil {
			return nil, err
		}
		for _, obj := range objects {
			if err := writeObject(obj); err != nil {
				return nil, err
			}
		}
		if err := writeGrounds(settings.TargetDirectory, node.Path, objects); err != nil {
			return nil, err
		}
		if err := manifest.Record(node.Path, input.Source); err != nil {
			return nil, err
		}

		recompiled[node.Path] = true
		result.Compiled = append(result.Compiled, node.Path)
		result.Objects = append(result.Objects, objects...)
		preload = appendOutgoing(preload, outgoing)
	}

	return result, nil
}

// needsRecompile reports whether node must be recompiled: either its
// source changed since the manifest last recorded it, or one of its
// dependencies recompiled this run (its cross-file preload may now
// differ from what node was last built against).
func needsRecompile(node *CompilationNode, source []byte, manifest *Manifest, recompiled map[string]bool, deps []string) bool {
	if !manifest.Unchanged(node.Path, source) {
		return true
	}
	for _, dep := range deps {
		if recompiled[dep] {
			return true
		}
	}
	return false
}

// preloadByName orders a preload list by absolute name and lets
// unique.Sort truncate away adjacent duplicates in place.
type preloadByName struct {
	s *[]resolve.PreloadSymbol
}

func (p preloadByName) Len() int { return len(*p.s) }
func (p preloadByName) Less(i, j int) bool {
	return (*p.s)[i].Absolute.String() < (*p.s)[j].Absolute.String()
}
func (p preloadByName) Swap(i, j int)  { (*p.s)[i], (*p.s)[j] = (*p.s)[j], (*p.s)[i] }
func (p preloadByName) Truncate(n int) { *p.s = (*p.s)[:n] }

// appendOutgoing feeds a file's outgoing surface into the running
// preload list and dedups it by absolute name, so a project with
// diamond-shaped imports doesn't accumulate duplicate preload entries
// for a symbol reachable through more than one path.
func appendOutgoing(preload []resolve.PreloadSymbol, units []module.TranslationUnit) []resolve.PreloadSymbol {
	for _, u := range units {
		preload = append(preload, resolve.PreloadSymbol{Absolute: u.Name, Visibility: u.Visibility})
	}
	return dedupPreload(preload)
}

func dedupPreload(preload []resolve.PreloadSymbol) []resolve.PreloadSymbol {
	unique.Sort(preloadByName{s: &preload})
	return preload
}

// writeGrounds writes one source file's whole compilation — every object
// it produced — as a single <stem>.grounds archive next to the per-object
// .jobj files, the artifact an object path consumer picks up wholesale.
func writeGrounds(targetDir, sourcePath string, objects []*module.CompilationObject) error {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	path := filepath.Join(targetDir, stem+module.GroundsExtension)
	file, err := os.Create(path)
	if err != nil {
		return jerr.ErrBuildIO.New(path)
	}
	defer file.Close()
	if _, err := file.WriteString(module.EncodeArchive(objects)); err != nil {
		return jerr.ErrBuildIO.New(path)
	}
	return file.Sync()
}

// writeObject writes obj's encoded form to disk, creating its parent
// directory as needed.
func writeObject(obj *module.CompilationObject) error {
	if err := os.MkdirAll(filepath.Dir(obj.Path), 0o755); err != nil {
		return jerr.ErrBuildIO.New(obj.Path)
	}
	file, err := os.Create(obj.Path)
	if err != nil {
		return jerr.ErrBuildIO.New(obj.Path)
	}
	defer file.Close()
	if _, err := file.WriteString(obj.Encode()); err != nil {
		return jerr.ErrBuildIO.New(obj.Path)
	}
	// The object isn't authoritative until it has actually hit the disk;
	// a torn write observed by a later staleness check would poison
	// every dependent build.
	return file.Sync()
}
