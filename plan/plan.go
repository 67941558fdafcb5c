// Package plan decides, for one file and one target language, which keys
// have to be sent to a translation service, which are left alone and which
// no longer exist in the source. It also merges translated entries back
// into the destination catalog.
package plan

import (
	"sort"

	"github.com/minios-linux/locsync/catalog"
)

// Plan is the key selection for one file/language pass. Every source key
// is in exactly one of ToTranslate or Unchanged. All slices are sorted.
type Plan struct {
	ToTranslate []string
	Unused      []string
	Unchanged   []string
}

// Empty reports whether the pass has nothing to translate and nothing to
// delete.
func (p *Plan) Empty() bool {
	return len(p.ToTranslate) == 0 && len(p.Unused) == 0
}

// Build computes the plan. dest is nil when the destination catalog does
// not exist yet; diff is the list of source keys changed since the last
// snapshot.
//
// A key is translated when the destination lacks it or when its source
// value changed. Destination keys missing from the source are unused.
func Build(source, dest catalog.Catalog, diff []string) *Plan {
	changed := make(map[string]bool, len(diff))
	for _, k := range diff {
		changed[k] = true
	}

	p := &Plan{}
	for _, k := range source.Keys() {
		if _, ok := dest[k]; !ok || changed[k] {
			p.ToTranslate = append(p.ToTranslate, k)
		} else {
			p.Unchanged = append(p.Unchanged, k)
		}
	}
	for k := range dest {
		if _, ok := source[k]; !ok {
			p.Unused = append(p.Unused, k)
		}
	}
	sort.Strings(p.Unused)
	return p
}

// SourceText returns the text sent to the service for key. Natural
// catalogs use the key itself, key-based catalogs the source value.
func SourceText(shape catalog.Shape, key string, source catalog.Catalog) string {
	if shape == catalog.ShapeNatural {
		return key
	}
	return source[key]
}

// Merge builds the new destination content: dest, minus the unused keys
// when deleteUnused is set, overridden by translated. It returns the
// merged catalog and the number of keys removed. dest is not modified.
func Merge(dest catalog.Catalog, p *Plan, translated catalog.Catalog, deleteUnused bool) (catalog.Catalog, int) {
	merged := make(catalog.Catalog, len(dest)+len(translated))
	for k, v := range dest {
		merged[k] = v
	}

	removed := 0
	if deleteUnused {
		for _, k := range p.Unused {
			if _, ok := merged[k]; ok {
				delete(merged, k)
				removed++
			}
		}
	}

	for k, v := range translated {
		merged[k] = v
	}
	return merged, removed
}
