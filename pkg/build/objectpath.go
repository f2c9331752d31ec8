package build

import (
	"io/fs"
	"os"
	"path/filepath"

	"jodin.dev/jodinc/pkg/jerr"
	"jodin.dev/jodinc/pkg/module"
	"jodin.dev/jodinc/pkg/resolve"
)

// loadObjectPath walks every directory on the settings' object path and
// collects the translation units of each precompiled object it finds —
// single .jobj objects and .grounds/.beans archives alike — as preload
// symbols. This is how a build links against objects whose sources it
// was never given.
func loadObjectPath(settings Settings) ([]resolve.PreloadSymbol, error) {
	var preload []resolve.PreloadSymbol
	for _, dir := range settings.ObjectPath {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, jerr.ErrInvalidObjectPath.New(dir)
		}
		err = filepath.Walk(dir, func(path string, info fs.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return err
			}
			units, err := readObjectUnits(path)
			if err != nil {
				return err
			}
			for _, u := range units {
				preload = append(preload, resolve.PreloadSymbol{Absolute: u.Name, Visibility: u.Visibility})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return preload, nil
}

// readObjectUnits reads one precompiled artifact's translation units,
// dispatching on its extension. Files that aren't compiled objects are
// skipped rather than rejected — an object directory may carry manifests
// or sources alongside its objects.
func readObjectUnits(path string) ([]module.TranslationUnit, error) {
	ext := filepath.Ext(path)
	switch ext {
	case ".jobj":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, jerr.ErrBuildIO.New(path)
		}
		obj, err := module.Decode(path, string(data))
		if err != nil {
			return nil, err
		}
		return obj.Units, nil

	case module.GroundsExtension, module.BeansExtension:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, jerr.ErrBuildIO.New(path)
		}
		objects, err := module.DecodeArchive(path, string(data))
		if err != nil {
			return nil, err
		}
		var units []module.TranslationUnit
		for _, obj := range objects {
			units = append(units, obj.Units...)
		}
		return units, nil

	default:
		return nil, nil
	}
}
