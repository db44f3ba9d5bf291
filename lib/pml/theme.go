// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package pml

import (
	"fmt"
	"regexp"
	"strconv"
)

var themePrefix = regexp.MustCompile(`^(?:(\d+)_)?`)

// NextThemeName returns the display name for a copy of a theme named
// name: a leading "N_" counter is incremented, otherwise "1_" is
// prepended. "Design" becomes "1_Design", which becomes "2_Design".
func NextThemeName(name string) string {
	match := themePrefix.FindStringSubmatchIndex(name)
	if match[2] < 0 {
		return "1_" + name
	}
	counter, err := strconv.Atoi(name[match[2]:match[3]])
	if err != nil {
		return "1_" + name
	}
	return strconv.Itoa(counter+1) + "_" + name[match[1]:]
}

// ThemeName returns the name attribute of a theme's root element.
func ThemeName(theme []byte) (string, error) {
	root, err := themeRoot(theme)
	if err != nil {
		return "", err
	}
	name, _ := root.attr("", "name")
	return name, nil
}

// RenameTheme returns theme with its display name advanced by
// NextThemeName.
func RenameTheme(theme []byte) ([]byte, error) {
	root, err := themeRoot(theme)
	if err != nil {
		return nil, err
	}
	name, _ := root.attr("", "name")
	tag := setAttr(theme[root.start:root.tagEnd], "name", NextThemeName(name))
	return splice(theme, root.start, root.tagEnd, tag), nil
}

func themeRoot(theme []byte) (*span, error) {
	doc, err := scan(theme)
	if err != nil {
		return nil, err
	}
	root := doc.root()
	if root.name.Local != "theme" {
		return nil, fmt.Errorf("%w: root is <%s>, want <theme>", ErrElementNotFound, root.name.Local)
	}
	return root, nil
}
