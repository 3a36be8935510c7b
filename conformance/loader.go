package conformance

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestDir is the default fixture directory, relative to this package.
const TestDir = "testdata"

// LoadedCase is a Case together with the relative path of the fixture
// file it came from, for grouping test output by file.
type LoadedCase struct {
	File string
	Case Case
}

// LoadAll walks dir for *.yaml fixture files and loads every Case they
// contain.
func LoadAll(dir string) ([]LoadedCase, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var loaded []LoadedCase
	err = filepath.Walk(abs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}
		cases, err := loadFile(path)
		if err != nil {
			return err
		}
		relPath, _ := filepath.Rel(abs, path)
		for _, c := range cases {
			loaded = append(loaded, LoadedCase{File: relPath, Case: c})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

func loadFile(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}
	return suite.Cases, nil
}
