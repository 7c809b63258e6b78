// Package boundary detects forbidden import directions introduced by a diff.
//
// ExtractEdge pulls an import specifier out of a single added source line
// using a small regex grammar (from '<spec>', import '<spec>', export * from
// '<spec>', export {...} from '<spec>'). It is the only place that knows
// about import syntax; CheckForbidden works on the resulting Edge alone.
//
// Globs use doublestar semantics, where ** spans path segments and
// wildcards match dotfiles.
package boundary
