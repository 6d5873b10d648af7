package audio

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Role identifies what an audio file represents in a comparison.
type Role string

const (
	RoleReference Role = "reference"
	RoleProposed  Role = "proposed"
	RoleBaseline  Role = "baseline"
	RoleDummy     Role = "dummy"
)

// Asset is an audio file together with its role.
type Asset struct {
	Path string
	Role Role
}

// Name returns the base filename of the asset.
func (a Asset) Name() string {
	return filepath.Base(a.Path)
}

// Set holds the aligned role lists found in an audio directory.
type Set struct {
	Reference []Asset
	Proposed  []Asset
	Baseline  []Asset
}

// Discover walks dir and collects reference, proposed and baseline files with
// the given extension. Each list is ordered by the text after the final
// underscore of the path so that index N of every list refers to the same
// comparison.
func Discover(dir, ext string) (Set, error) {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return Set{}, fmt.Errorf("discover audio: extension is required")
	}
	found := map[Role][]Asset{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, role := range []Role{RoleReference, RoleProposed, RoleBaseline} {
			ok, matchErr := filepath.Match(string(role)+"_*."+ext, d.Name())
			if matchErr != nil {
				return matchErr
			}
			if ok {
				found[role] = append(found[role], Asset{Path: path, Role: role})
				break
			}
		}
		return nil
	})
	if err != nil {
		return Set{}, fmt.Errorf("discover audio in %s: %w", dir, err)
	}
	set := Set{
		Reference: found[RoleReference],
		Proposed:  found[RoleProposed],
		Baseline:  found[RoleBaseline],
	}
	sortByIndex(set.Reference)
	sortByIndex(set.Proposed)
	sortByIndex(set.Baseline)
	return set, nil
}

func sortByIndex(assets []Asset) {
	sort.SliceStable(assets, func(i, j int) bool {
		ki, kj := indexKey(assets[i].Path), indexKey(assets[j].Path)
		if ki != kj {
			return ki < kj
		}
		return assets[i].Path < assets[j].Path
	})
}

func indexKey(path string) string {
	if idx := strings.LastIndexByte(path, '_'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// DummyPath returns the sibling path a dummy derived from ref is written to.
func DummyPath(ref string) string {
	dir, base := filepath.Split(ref)
	name := strings.ReplaceAll(base, string(RoleReference), string(RoleDummy))
	if name == base {
		name = string(RoleDummy) + "_" + base
	}
	return filepath.Join(dir, name)
}
