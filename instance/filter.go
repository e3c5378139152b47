package instance

import (
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// Filter selects instances by name. An empty include list matches every
// name; exclude patterns win over include patterns.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range include {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "compile include pattern %q", p)
		}
		f.include = append(f.include, g)
	}
	for _, p := range exclude {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "compile exclude pattern %q", p)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

func (f *Filter) Match(name string) bool {
	for _, g := range f.exclude {
		if g.Match(name) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Apply returns the records whose name matches, preserving input order, and
// the ones that were dropped.
func (f *Filter) Apply(records []Record) (kept, dropped []Record) {
	for _, r := range records {
		if f.Match(r.Name) {
			kept = append(kept, r)
		} else {
			dropped = append(dropped, r)
		}
	}
	return kept, dropped
}
