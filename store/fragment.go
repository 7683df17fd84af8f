package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/lucky-aeon/agentx/mcp-manager/errs"
	"github.com/lucky-aeon/agentx/mcp-manager/types"
	"github.com/lucky-aeon/agentx/mcp-manager/utils"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

// FragmentStore keeps one <name>.json file per fragment in a directory, with
// the description in a <name>.json.description sidecar.
type FragmentStore struct {
	dir string
	xl  xlog.Logger
}

func NewFragmentStore(dir string, xl xlog.Logger) *FragmentStore {
	if xl == nil {
		xl = xlog.NewLogger("[FragmentStore]")
	}
	return &FragmentStore{dir: dir, xl: xl}
}

func (s *FragmentStore) Dir() string { return s.dir }

func (s *FragmentStore) path(file string) string { return filepath.Join(s.dir, file) }

// List returns every fragment in directory order. A missing directory is
// created and yields an empty list.
func (s *FragmentStore) List() ([]types.Fragment, error) {
	entries, err := readOrCreateDir(s.dir)
	if err != nil {
		return nil, errs.IO("fragment list", s.dir, err)
	}

	fragments := make([]types.Fragment, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Ext || utils.IsTempFile(entry.Name()) {
			continue
		}
		content, err := os.ReadFile(s.path(entry.Name()))
		if err != nil {
			return nil, errs.IO("fragment list", entry.Name(), err)
		}
		fragments = append(fragments, types.Fragment{
			Name:        entry.Name(),
			Content:     string(content),
			Description: s.readDescription(entry.Name()),
		})
	}
	return fragments, nil
}

// Read returns the raw content of a fragment.
func (s *FragmentStore) Read(name string) (string, error) {
	file, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(s.path(file))
	if err != nil {
		return "", fileError("fragment read", file, err)
	}
	return string(content), nil
}

// Get returns content and description.
func (s *FragmentStore) Get(name string) (types.Fragment, error) {
	content, err := s.Read(name)
	if err != nil {
		return types.Fragment{}, err
	}
	file, _ := NormalizeName(name)
	return types.Fragment{Name: file, Content: content, Description: s.readDescription(file)}, nil
}

// Save writes a fragment and its sidecar. Content that is not well-formed JSON
// is rejected before anything is touched. When previousName names another
// fragment, that fragment and its sidecar are removed first.
func (s *FragmentStore) Save(name, content, description, previousName string) (types.Fragment, error) {
	file, err := NormalizeName(name)
	if err != nil {
		return types.Fragment{}, err
	}
	if !gjson.Valid(content) {
		return types.Fragment{}, errs.InvalidFormat("fragment save", file, errors.New("content is not valid JSON"))
	}

	if previousName != "" {
		prev, err := NormalizeName(previousName)
		if err != nil {
			return types.Fragment{}, err
		}
		if prev != file {
			if err := s.Delete(prev); err != nil && !errors.Is(err, errs.ErrNotFound) {
				return types.Fragment{}, err
			}
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return types.Fragment{}, errs.IO("fragment save", file, err)
	}
	if err := utils.WriteFileAtomic(s.path(file), []byte(content), 0o644); err != nil {
		return types.Fragment{}, errs.IO("fragment save", file, err)
	}
	if err := utils.WriteFileAtomic(s.path(file+DescriptionExt), []byte(description), 0o644); err != nil {
		return types.Fragment{}, errs.IO("fragment save description", file, err)
	}

	s.xl.Debugf("saved fragment %s (%d bytes)", file, len(content))
	return types.Fragment{Name: file, Content: content, Description: description}, nil
}

// Delete removes the fragment, then its sidecar if there is one.
func (s *FragmentStore) Delete(name string) error {
	file, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(s.path(file)); err != nil {
		return fileError("fragment delete", file, err)
	}
	if err := os.Remove(s.path(file + DescriptionExt)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.xl.Warnf("remove description of %s: %v", file, err)
	}
	s.xl.Debugf("deleted fragment %s", file)
	return nil
}

func (s *FragmentStore) readDescription(file string) string {
	data, err := os.ReadFile(s.path(file + DescriptionExt))
	if err != nil {
		return ""
	}
	return string(data)
}

func readOrCreateDir(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, os.MkdirAll(dir, 0o755)
	}
	return entries, err
}

func fileError(op, name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errs.NotFound(op, name, err)
	}
	return errs.IO(op, name, err)
}
