// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package partname

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Name is an absolute partname, always beginning with "/".
type Name string

// Template is a naming family: a partname with its numeric suffix
// replaced by a %d verb. Literal percent signs are escaped as %%.
type Template string

// Package is the pseudo-partname of the package itself. Package-level
// relationships are resolved against it.
const Package Name = "/"

// familyPattern splits a partname into stem, optional numeric suffix,
// and optional extension. The stem is matched lazily so that the
// trailing digits land in the second group.
var familyPattern = regexp.MustCompile(`^(.+?)(\d+)?(\.\w+)?$`)

// Parse validates s as a partname: it must be absolute, must not end
// with a slash, and must not contain empty, "." or ".." segments.
func Parse(s string) (Name, error) {
	if s == "" {
		return "", fmt.Errorf("partname is empty")
	}
	if s[0] != '/' {
		return "", fmt.Errorf("partname %q must begin with /", s)
	}
	if s == "/" {
		return "", fmt.Errorf("partname must name a member, not the package root")
	}
	if strings.HasSuffix(s, "/") {
		return "", fmt.Errorf("partname %q must not end with /", s)
	}
	for _, segment := range strings.Split(s[1:], "/") {
		switch segment {
		case "":
			return "", fmt.Errorf("partname %q contains an empty segment", s)
		case ".", "..":
			return "", fmt.Errorf("partname %q contains a relative segment %q", s, segment)
		}
	}
	return Name(s), nil
}

// MustParse is like Parse but panics on invalid input. Intended for
// constants and tests.
func MustParse(s string) Name {
	name, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return name
}

func (n Name) String() string { return string(n) }

// split returns the stem, numeric suffix and extension of n.
func (n Name) split() (stem, digits, extension string) {
	match := familyPattern.FindStringSubmatch(string(n))
	if match == nil {
		return string(n), "", ""
	}
	return match[1], match[2], match[3]
}

// Template returns the naming family of n.
func (n Name) Template() Template {
	stem, _, extension := n.split()
	return Template(escape(stem) + "%d" + escape(extension))
}

// Index returns the numeric suffix of n, or 0 when there is none.
func (n Name) Index() int {
	_, digits, _ := n.split()
	if digits == "" {
		return 0
	}
	index, err := strconv.Atoi(digits)
	if err != nil {
		// Only reachable for suffixes that overflow int.
		return 0
	}
	return index
}

// IsSimilar reports whether n and other belong to the same naming
// family. The indices are not compared.
func (n Name) IsSimilar(other Name) bool {
	return n.Template() == other.Template()
}

// BaseURI returns the directory containing n, e.g. "/ppt/slides" for
// "/ppt/slides/slide1.xml". The base URI of the package is "/".
func (n Name) BaseURI() string {
	if n == Package {
		return "/"
	}
	return path.Dir(string(n))
}

// Filename returns the last segment of n.
func (n Name) Filename() string {
	return path.Base(string(n))
}

// Ext returns the extension of n without the leading dot, or "".
func (n Name) Ext() string {
	extension := path.Ext(string(n))
	return strings.TrimPrefix(extension, ".")
}

// RelsName returns the partname of the relationships member that
// belongs to n: /ppt/slides/_rels/slide1.xml.rels for
// /ppt/slides/slide1.xml, and /_rels/.rels for the package.
func (n Name) RelsName() Name {
	if n == Package {
		return "/_rels/.rels"
	}
	return Name(path.Join(n.BaseURI(), "_rels", n.Filename()+".rels"))
}

// RelativeRef returns the reference to n relative to baseURI, the form
// used in relationship Target attributes.
func (n Name) RelativeRef(baseURI string) string {
	from := segments(baseURI)
	to := segments(string(n))

	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == to[common] {
		common++
	}

	var parts []string
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)
	return strings.Join(parts, "/")
}

// Resolve converts a relationship target reference into an absolute
// partname, interpreting relative references against baseURI.
func Resolve(baseURI, reference string) (Name, error) {
	if strings.HasPrefix(reference, "/") {
		return Parse(path.Clean(reference))
	}
	return Parse(path.Join(baseURI, reference))
}

// Format returns the member of the family with the given index.
func (t Template) Format(index int) Name {
	return Name(fmt.Sprintf(string(t), index))
}

func (t Template) String() string { return string(t) }

func escape(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

func segments(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
