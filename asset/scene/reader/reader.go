package reader

import (
	"errors"
	"fmt"

	"github.com/achilleasa/ashtrace/asset"
	"github.com/achilleasa/ashtrace/asset/compiler"
	"github.com/achilleasa/ashtrace/asset/scene"
)

var (
	ErrUnsupportedFormat = errors.New("reader: unsupported file format")
	ErrInvalidDescriptor = errors.New("reader: invalid scene descriptor")
	ErrUnknownMaterial   = errors.New("reader: unknown material")
	ErrDuplicateMaterial = errors.New("reader: duplicate material id")
	ErrInvalidArchive    = errors.New("reader: invalid scene archive")
)

// Compiled scenes are shared between reads of the same sources.
var sceneCache = compiler.NewCache()

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from file. Scene descriptors (.json, .yaml, .yml) are parsed
// and compiled; compiled scene archives (.zip) are loaded as-is.
func ReadScene(filename string) (*scene.Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	reader, err := readerFor(res)
	if err != nil {
		return nil, err
	}
	return reader.Read(res)
}

// Select reader based on file extension.
func readerFor(res *asset.Resource) (Reader, error) {
	switch res.Ext() {
	case ".json", ".yaml", ".yml":
		return newDescriptorReader(), nil
	case ".zip":
		return newZipSceneReader(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, res.Path())
}
