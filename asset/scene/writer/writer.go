package writer

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/achilleasa/ashtrace/asset/scene"
	"github.com/achilleasa/ashtrace/log"
	"github.com/klauspost/compress/zip"
)

const (
	metadataFile = "scene.bin"
	textureFile  = "texture.f32"
)

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene definition
	Write(*scene.Scene) error
}

// Write scene to a zip archive.
func WriteScene(sc *scene.Scene, filename string) error {
	writer := newZipSceneWriter(filename)
	return writer.Write(sc)
}

type zipSceneWriter struct {
	logger   log.Logger
	filename string
}

// Create a new zip scene writer.
func newZipSceneWriter(filename string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:   log.New("zip writer"),
		filename: filename,
	}
}

// Write the scene metadata (gob) and the data texture (raw little-endian
// float32 values ready for an RGBA32F upload) to the archive.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef(`writing compiled scene to "%s"`, w.filename)
	start := time.Now()

	f, err := os.Create(w.filename)
	if err != nil {
		return err
	}

	if err = writeArchive(f, sc); err != nil {
		f.Close()
		os.Remove(w.filename)
		return fmt.Errorf("writer: %s: %w", w.filename, err)
	}
	if err = f.Close(); err != nil {
		return err
	}

	w.logger.Noticef("wrote scene %s in %d ms", sc.ID, time.Since(start).Nanoseconds()/1e6)
	return nil
}

func writeArchive(out io.Writer, sc *scene.Scene) error {
	zw := zip.NewWriter(out)

	// The data texture is stored separately
	metadata := *sc
	metadata.Data = nil

	entry, err := zw.Create(metadataFile)
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(entry).Encode(&metadata); err != nil {
		return err
	}

	entry, err = zw.Create(textureFile)
	if err != nil {
		return err
	}
	if err = binary.Write(entry, binary.LittleEndian, sc.Data); err != nil {
		return err
	}

	return zw.Close()
}
