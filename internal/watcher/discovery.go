package watcher

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// configDir is never outlined or watched.
const configDir = ".outline"

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches files in the root directory when pattern starts with **/
	rootGlob glob.Glob
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(simplified, '/'); err == nil {
				cp.rootGlob = rg
			}
		}
		compiled = append(compiled, cp)
	}
	return compiled, nil
}

// FileDiscovery finds source files with glob patterns and ignore rules.
type FileDiscovery struct {
	rootDir        string
	codePatterns   []compiledPattern
	ignorePatterns []compiledPattern
}

// NewFileDiscovery creates a new file discovery instance.
func NewFileDiscovery(rootDir string, codePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	code, err := compilePatterns(codePatterns)
	if err != nil {
		return nil, err
	}
	ignore, err := compilePatterns(ignorePatterns)
	if err != nil {
		return nil, err
	}
	return &FileDiscovery{
		rootDir:        rootDir,
		codePatterns:   code,
		ignorePatterns: ignore,
	}, nil
}

// Root returns the directory discovery is relative to.
func (fd *FileDiscovery) Root() string {
	return fd.rootDir
}

// DiscoverFiles walks the directory tree and returns matching files in lexical order.
func (fd *FileDiscovery) DiscoverFiles() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, ok := fd.rel(path)
		if !ok {
			return nil
		}

		if d.IsDir() {
			if relPath != "." && fd.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if fd.shouldIgnore(relPath) {
			return nil
		}
		if fd.matchesAnyPattern(relPath, fd.codePatterns) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}

// Matches reports whether path (absolute or relative to the root) is a source
// file that discovery would return.
func (fd *FileDiscovery) Matches(path string) bool {
	relPath, ok := fd.rel(path)
	if !ok || fd.shouldIgnore(relPath) {
		return false
	}
	return fd.matchesAnyPattern(relPath, fd.codePatterns)
}

// IgnoresDir reports whether a directory should not be descended into.
func (fd *FileDiscovery) IgnoresDir(path string) bool {
	relPath, ok := fd.rel(path)
	if !ok {
		return true
	}
	return relPath != "." && fd.shouldIgnore(relPath)
}

// rel returns path relative to the root with forward slashes.
func (fd *FileDiscovery) rel(path string) (string, bool) {
	root := fd.rootDir
	if filepath.IsAbs(path) != filepath.IsAbs(root) {
		var err error
		if path, err = filepath.Abs(path); err != nil {
			return "", false
		}
		if root, err = filepath.Abs(root); err != nil {
			return "", false
		}
	}
	relPath, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", false
	}
	return filepath.ToSlash(relPath), true
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	if relPath == configDir || strings.HasPrefix(relPath, configDir+"/") {
		return true
	}

	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// "node_modules" should match pattern "node_modules/**"
	return fd.matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
// Files in the root also match patterns with a leading **/.
func (fd *FileDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	rootFile := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if rootFile && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}
