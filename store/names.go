package store

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/lucky-aeon/agentx/mcp-manager/errs"
)

const (
	Ext            = ".json"
	DescriptionExt = ".description"
)

// NormalizeName returns the file name used on disk for name: the name itself
// when it already ends in .json, otherwise name + ".json".
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "" || name == Ext:
		return "", errs.InvalidFormat("name", name, errors.New("empty name"))
	case strings.ContainsAny(name, `/\`), strings.Contains(name, ".."):
		return "", errs.InvalidFormat("name", name, errors.New("name must not contain path elements"))
	case strings.HasSuffix(name, DescriptionExt):
		return "", errs.InvalidFormat("name", name, errors.New("reserved suffix "+DescriptionExt))
	case strings.HasPrefix(name, "."):
		return "", errs.InvalidFormat("name", name, errors.New("name must not start with a dot"))
	}
	if filepath.Ext(name) != Ext {
		name += Ext
	}
	return name, nil
}

// DisplayName strips the .json extension.
func DisplayName(name string) string {
	return strings.TrimSuffix(name, Ext)
}
