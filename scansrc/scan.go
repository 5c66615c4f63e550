// Package scansrc extracts the version-constraint pragma and import list
// from an SC source text. It is deliberately lexical, not a parser: it
// tolerates arbitrary surrounding syntax and comments, the same way the
// teacher's own import-statement extraction in deduce.go works off regular
// expressions over raw text rather than a full grammar.
package scansrc

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	pragmaRe = regexp.MustCompile(`pragma\s+(\w+)\s+([^;]+);`)

	// import "./Foo.sol";
	importPlainRe = regexp.MustCompile(`import\s+"([^"]+)"\s*;`)
	// import {Foo, Bar} from "./Foo.sol";
	importNamedRe = regexp.MustCompile(`import\s*\{[^}]*\}\s*from\s+"([^"]+)"\s*;`)
	// import * as Foo from "./Foo.sol";
	importStarRe = regexp.MustCompile(`import\s*\*\s*as\s+\w+\s+from\s+"([^"]+)"\s*;`)
)

// ImportRef is a single textual import reference, not yet resolved.
type ImportRef struct {
	Path string
}

// Scanned holds the result of scanning one source text.
type Scanned struct {
	Family     string
	Constraint *semver.Constraints // nil when no pragma is present
	Imports    []ImportRef
}

// Scan strips comments from text and extracts the pragma family/range and
// the list of import path literals.
func Scan(text string) (Scanned, error) {
	stripped := stripComments(text)

	var out Scanned
	for _, m := range pragmaRe.FindAllStringSubmatch(stripped, -1) {
		family, rng := m[1], strings.TrimSpace(m[2])
		c, err := semver.NewConstraint(rng)
		if err != nil {
			return Scanned{}, err
		}
		if out.Constraint == nil {
			out.Family = family
			out.Constraint = c
			continue
		}
		out.Constraint = intersect(out.Constraint, c)
	}

	seen := make(map[string]struct{})
	addImport := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out.Imports = append(out.Imports, ImportRef{Path: path})
	}
	for _, m := range importNamedRe.FindAllStringSubmatch(stripped, -1) {
		addImport(m[1])
	}
	for _, m := range importStarRe.FindAllStringSubmatch(stripped, -1) {
		addImport(m[1])
	}
	for _, m := range importPlainRe.FindAllStringSubmatch(stripped, -1) {
		addImport(m[1])
	}
	return out, nil
}

// intersect combines two constraint expressions by AND-joining their
// string forms and reparsing, since semver/v3's Constraints type exposes no
// direct intersection operator. This mirrors the asymmetry the spec itself
// calls out in §9 Open Questions (b): constraint intersection here is a
// textual AND, applied to multiple pragmas within one file. The JSON
// driver joins constraints across files the same textual way in its own
// code.
func intersect(a, b *semver.Constraints) *semver.Constraints {
	merged, err := semver.NewConstraint(a.String() + ", " + b.String())
	if err != nil {
		// Constraints we already parsed individually always recombine; if
		// this ever fails it indicates a semver library incompatibility,
		// not a malformed source file.
		return a
	}
	return merged
}

func stripComments(text string) string {
	var out strings.Builder
	runes := []rune(text)
	inLine, inBlock := false, false
	for i := 0; i < len(runes); i++ {
		if inLine {
			if runes[i] == '\n' {
				inLine = false
				out.WriteRune(runes[i])
			}
			continue
		}
		if inBlock {
			if runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/' {
				inBlock = false
				i++
			}
			continue
		}
		if runes[i] == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			inLine = true
			i++
			continue
		}
		if runes[i] == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			inBlock = true
			i++
			continue
		}
		out.WriteRune(runes[i])
	}
	return out.String()
}
