package depcheck

import (
	"context"
	stderrors "errors"
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/vango-dev/spa/internal/errors"
)

// Options configures Check.
type Options struct {
	// Dir is the directory tree to analyze. Defaults to ".".
	Dir string

	// ModFile is the go.mod whose requirements are checked. Defaults to
	// go.mod inside Dir.
	ModFile string

	// IncludeTests also scans _test.go files.
	IncludeTests bool
}

// Report is the result of Check.
type Report struct {
	// Module is the module path declared by the go.mod.
	Module string

	// Declared are the direct requirements, sorted.
	Declared []string

	// Used are the modules that provide at least one imported package, sorted.
	Used []string

	// Superfluous are declared but never imported.
	Superfluous []string

	// Missing are imported but not declared as direct requirements.
	Missing []string

	// Importers maps each used module to the files importing it,
	// relative to Dir.
	Importers map[string][]string

	// Files is the number of Go files scanned.
	Files int
}

// OK reports whether nothing is missing.
func (r *Report) OK() bool {
	return len(r.Missing) == 0
}

// Clean reports whether the requirements match the imports exactly.
func (r *Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.Superfluous) == 0
}

// Check compares the direct requirements of a go.mod with the external
// packages imported by the Go files under a directory.
func Check(ctx context.Context, opts Options) (*Report, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.New("E164").WithDetail("directory not found: " + dir)
	}
	modPath := opts.ModFile
	if modPath == "" {
		modPath = filepath.Join(dir, "go.mod")
	}

	mf, err := readModFile(modPath)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Module:    mf.Module.Mod.Path,
		Importers: make(map[string][]string),
	}

	// Every requirement, direct or not, identifies which module provides
	// an import path. Only direct ones count as declared.
	var known []string
	declared := make(map[string]bool)
	for _, req := range mf.Require {
		known = append(known, req.Mod.Path)
		if !req.Indirect {
			declared[req.Mod.Path] = true
		}
	}

	used := make(map[string]bool)
	err = walkGoFiles(ctx, dir, opts.IncludeTests, func(path string, imports []string) {
		rep.Files++
		rel, rerr := filepath.Rel(dir, path)
		if rerr != nil {
			rel = path
		}
		for _, imp := range imports {
			if isStdlib(imp) || within(imp, rep.Module) {
				continue
			}
			mod := owningModule(imp, known)
			used[mod] = true
			if !slices.Contains(rep.Importers[mod], rel) {
				rep.Importers[mod] = append(rep.Importers[mod], rel)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	rep.Declared = sortedKeys(declared)
	rep.Used = sortedKeys(used)
	rep.Superfluous = difference(rep.Declared, used)
	rep.Missing = difference(rep.Used, declared)
	return rep, nil
}

func readModFile(path string) (*modfile.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E160").WithDetail("go.mod not found: " + path)
		}
		return nil, errors.New("E161").Wrap(err)
	}
	mf, err := modfile.Parse(path, data, nil)
	if err != nil {
		se := errors.New("E161").Wrap(err)
		var list modfile.ErrorList
		if stderrors.As(err, &list) && len(list) > 0 {
			se.WithLocation(path, list[0].Pos.Line, list[0].Pos.LineRune)
		}
		return nil, se
	}
	if mf.Module == nil {
		return nil, errors.New("E161").WithDetail(path + " has no module directive")
	}
	return mf, nil
}

// walkGoFiles calls fn with the import paths of every Go file under root.
// Hidden directories, directories starting with "_", testdata and vendor
// are skipped, like the go command does.
func walkGoFiles(ctx context.Context, root string, tests bool, fn func(path string, imports []string)) error {
	fset := token.NewFileSet()
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "testdata" || name == "vendor") {
				return filepath.SkipDir
			}
			// A nested go.mod starts another module with its own requires.
			if path != root {
				if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") {
			return nil
		}
		if !tests && strings.HasSuffix(name, "_test.go") {
			return nil
		}

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			se := errors.New("E162").Wrap(err)
			var list scanner.ErrorList
			if stderrors.As(err, &list) && len(list) > 0 {
				se.WithLocation(list[0].Pos.Filename, list[0].Pos.Line, list[0].Pos.Column)
			}
			return se
		}
		imports := make([]string, 0, len(f.Imports))
		for _, spec := range f.Imports {
			p, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			imports = append(imports, p)
		}
		fn(path, imports)
		return nil
	})
}

// isStdlib reports whether an import path belongs to the standard library:
// its first element has no dot.
func isStdlib(path string) bool {
	if path == "C" {
		return true
	}
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

// within reports whether path is mod or a package below it.
func within(path, mod string) bool {
	return mod != "" && (path == mod || strings.HasPrefix(path, mod+"/"))
}

// repoDepth is the number of path elements naming a repository on hosts
// whose layout is fixed.
var repoDepth = map[string]int{
	"github.com":        3,
	"gitlab.com":        3,
	"bitbucket.org":     3,
	"golang.org":        3, // golang.org/x/<repo>
	"google.golang.org": 2,
	"go.uber.org":       2,
	"gopkg.in":          2,
	"k8s.io":            2,
	"sigs.k8s.io":       2,
}

// owningModule returns the longest known module path containing imp.
// Imports from unknown modules are attributed to their repository root
// on well-known hosts, or to the import path itself.
func owningModule(imp string, known []string) string {
	best := ""
	for _, mod := range known {
		if within(imp, mod) && !nextMajor(imp, mod) && len(mod) > len(best) {
			best = mod
		}
	}
	if best != "" {
		return best
	}
	return repoRoot(imp)
}

// repoRoot guesses the module path of an import nobody declares: the
// repository root on a host from repoDepth plus any major version suffix,
// as in github.com/a/b/v2. gopkg.in paths end at the element carrying the
// ".vN" suffix.
func repoRoot(imp string) string {
	parts := strings.Split(imp, "/")
	depth, ok := repoDepth[parts[0]]
	if !ok {
		return imp
	}
	if parts[0] == "gopkg.in" {
		for i, p := range parts[1:] {
			if strings.Contains(p, ".v") {
				return strings.Join(parts[:i+2], "/")
			}
		}
		return imp
	}
	if len(parts) < depth {
		return imp
	}
	root := strings.Join(parts[:depth], "/")
	if len(parts) > depth {
		if _, major, ok := module.SplitPathVersion(root + "/" + parts[depth]); ok && major != "" {
			return root + "/" + parts[depth]
		}
	}
	return root
}

// nextMajor reports whether the element of imp right after mod is a major
// version suffix, as in github.com/a/b/v2 below github.com/a/b.
func nextMajor(imp, mod string) bool {
	rest := strings.TrimPrefix(imp, mod+"/")
	if rest == imp {
		return false
	}
	elem, _, _ := strings.Cut(rest, "/")
	_, major, ok := module.SplitPathVersion(mod + "/" + elem)
	return ok && major != ""
}

func difference(list []string, set map[string]bool) []string {
	var out []string
	for _, s := range list {
		if !set[s] {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Print writes a human-readable summary of r to w, prefixing each line
// with name.
func Print(w io.Writer, name string, r *Report) {
	if len(r.Superfluous) > 0 {
		fmt.Fprintf(w, "%s: Superfluous in go.mod require block: %s\n", name, strings.Join(r.Superfluous, ", "))
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(w, "%s: Missing in go.mod require block: %s\n", name, strings.Join(r.Missing, ", "))
		for _, mod := range r.Missing {
			for _, file := range r.Importers[mod] {
				fmt.Fprintf(w, "  %s imported by %s\n", mod, file)
			}
		}
	}
	if r.Clean() {
		fmt.Fprintf(w, "%s: All good.\n", name)
	}
}
