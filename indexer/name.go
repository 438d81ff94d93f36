package indexer

import (
	"path"
	"reflect"
	"strings"
)

// moduleRoot is the import path every package of this module shares.
var moduleRoot = path.Dir(reflect.TypeOf(Spec{}).PkgPath()) + "/"

// QualifiedName names an indexer by its package path relative to the module
// and its type, e.g. "interval.VerticalIndexer". Types from other modules
// keep their full import path.
func QualifiedName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.TrimPrefix(t.PkgPath(), moduleRoot) + "." + t.Name()
}
