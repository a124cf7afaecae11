// Package assets lays out the generated channel tree: component files per
// compiled source plus the shared runtime library, written once no matter
// how many components need it.
package assets

import (
	"path"

	"github.com/aryamurray/roku-svelte-sub001/pkg/compiler"
)

// File is one output file, with a path relative to the channel root.
type File struct {
	Path    string
	Content string
}

// RuntimePath is where the shared helper library lands in the channel.
const RuntimePath = "source/rsv-runtime.brs"

// Plan maps one compile result to its output files. The runtime library is
// included when the component needs it; use a Set to deduplicate it across
// components.
func Plan(name string, res compiler.Result) []File {
	dir := path.Join("components", name)
	files := []File{
		{Path: path.Join(dir, name+".xml"), Content: res.XML},
		{Path: path.Join(dir, name+".brs"), Content: res.BrightScript},
	}
	for _, extra := range res.AdditionalComponents {
		files = append(files,
			File{Path: path.Join(dir, extra.Name+".xml"), Content: extra.XML},
			File{Path: path.Join(dir, extra.Name+".brs"), Content: extra.BrightScript},
		)
	}
	if res.RequiresRuntime || res.RequiresStdlib {
		files = append(files, File{Path: RuntimePath, Content: RuntimeBRS})
	}
	return files
}

// Set accumulates planned files across components, keeping the first write
// for any path.
type Set struct {
	files []File
	seen  map[string]bool
}

func (s *Set) Add(files ...File) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	for _, f := range files {
		if s.seen[f.Path] {
			continue
		}
		s.seen[f.Path] = true
		s.files = append(s.files, f)
	}
}

// All returns the files in first-add order.
func (s *Set) All() []File {
	return s.files
}
