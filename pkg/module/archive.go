package module

import (
	"strconv"
	"strings"

	"jodin.dev/jodinc/pkg/jerr"
)

// Archive file extensions: a .grounds file holds everything one source
// file compiled to; a .beans file bundles any number of objects (a whole
// library's worth) into one distributable artifact. Both share the same
// layout — the extensions signal intent, not format.
const (
	GroundsExtension = ".grounds"
	BeansExtension   = ".beans"
)

// EncodeArchive renders objects as a single archive: an object count,
// then each object's original path followed by its self-delimiting
// encoded form, back to back.
func EncodeArchive(objects []*CompilationObject) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(objects)))
	b.WriteByte('\n')
	for _, obj := range objects {
		b.WriteString(obj.Path)
		b.WriteByte('\n')
		b.WriteString(obj.Encode())
	}
	return b.String()
}

// DecodeArchive is EncodeArchive's inverse. path names the archive file
// itself, used only for error reporting; each entry carries its own
// original object path.
func DecodeArchive(path string, data string) ([]*CompilationObject, error) {
	lines := strings.Split(data, "\n")
	if len(lines) == 0 {
		return nil, jerr.ErrBuildIO.New(path)
	}
	count, err := strconv.Atoi(lines[0])
	if err != nil {
		return nil, jerr.ErrBuildIO.New(path)
	}

	cursor := 1
	objects := make([]*CompilationObject, 0, count)
	for i := 0; i < count; i++ {
		if cursor >= len(lines) {
			return nil, jerr.ErrBuildIO.New(path)
		}
		objPath := lines[cursor]
		cursor++
		obj, nextCursor, err := decodeLines(objPath, lines, cursor)
		if err != nil {
			return nil, err
		}
		cursor = nextCursor
		objects = append(objects, obj)
	}
	return objects, nil
}
