package reader

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/achilleasa/ashtrace/asset"
	"github.com/achilleasa/ashtrace/asset/scene"
	"github.com/achilleasa/ashtrace/log"
	"github.com/klauspost/compress/zip"
)

const (
	metadataFile = "scene.bin"
	textureFile  = "texture.f32"
)

type zipSceneReader struct {
	logger log.Logger
}

// Create a new zip scene reader.
func newZipSceneReader() *zipSceneReader {
	return &zipSceneReader{
		logger: log.New("zip reader"),
	}
}

// Read compiled scene from a zip archive. The archive contains the gob-encoded
// scene metadata and the raw little-endian data texture.
func (p *zipSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`loading compiled scene from "%s"`, sceneRes.Path())
	start := time.Now()

	// zip package requires a reader implementing ReaderAt. To work around
	// this requirement we read the entire zip file into memory and create
	// a reader from the bytes package that implements ReaderAt
	data, err := io.ReadAll(sceneRes)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArchive, err)
	}

	var sc *scene.Scene
	var texture []float32
	for _, f := range zr.File {
		switch f.Name {
		case metadataFile:
			sc = &scene.Scene{}
			err = decodeEntry(f, func(r io.Reader) error {
				return gob.NewDecoder(r).Decode(sc)
			})
		case textureFile:
			if f.UncompressedSize64%4 != 0 {
				return nil, fmt.Errorf("%w: %s size %d is not a multiple of 4", ErrInvalidArchive, f.Name, f.UncompressedSize64)
			}
			texture = make([]float32, f.UncompressedSize64/4)
			err = decodeEntry(f, func(r io.Reader) error {
				return binary.Read(r, binary.LittleEndian, texture)
			})
		default:
			p.logger.Warningf("unknown file %s in scene zip file; skipping", f.Name)
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("%w: failed to load %s: %s", ErrInvalidArchive, f.Name, err)
		}
	}

	if sc == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidArchive, metadataFile)
	}
	if texture == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidArchive, textureFile)
	}
	sc.Data = texture

	if err = sc.Validate(); err != nil {
		return nil, err
	}

	p.logger.Noticef("loaded scene %s in %d ms", sc.ID, time.Since(start).Nanoseconds()/1e6)
	return sc, nil
}

func decodeEntry(f *zip.File, decodeFn func(io.Reader) error) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return decodeFn(rc)
}
