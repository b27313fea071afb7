package writer

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/ashtrace/asset/scene"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

func testScene() *scene.Scene {
	data := make([]float32, 16)
	for i := range data {
		data[i] = float32(i) + 0.5
	}
	return &scene.Scene{
		ID:     uuid.New(),
		Data:   data,
		Width:  2,
		Height: 2,
		Header: scene.Header{
			MeshMetaOffset:         2,
			BvhNodeOffset:          2,
			MaterialOffset:         2,
			EmissiveTriangleOffset: 2,
		},
		MaxBvhDepth:   3,
		TriangleCount: 11,
	}
}

func readEntry(t *testing.T, zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return data
	}
	t.Fatalf("archive does not contain %s", name)
	return nil
}

func TestWriteArchive(t *testing.T) {
	sc := testScene()

	var buf bytes.Buffer
	require.NoError(t, writeArchive(&buf, sc))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	// Metadata does not include the data texture
	var metadata scene.Scene
	require.NoError(t, gob.NewDecoder(bytes.NewReader(readEntry(t, zr, metadataFile))).Decode(&metadata))
	require.Nil(t, metadata.Data)
	require.Equal(t, sc.ID, metadata.ID)
	require.Equal(t, sc.Header, metadata.Header)
	require.Equal(t, uint32(3), metadata.MaxBvhDepth)
	require.Equal(t, uint32(11), metadata.TriangleCount)

	raw := readEntry(t, zr, textureFile)
	require.Len(t, raw, 4*len(sc.Data))
	for i, v := range sc.Data {
		got := binary.LittleEndian.Uint32(raw[4*i:])
		require.Equalf(t, v, math.Float32frombits(got), "texture float %d", i)
	}

	// The caller's scene is not modified
	require.Len(t, sc.Data, 16)
}

func TestWriteSceneCreatesFile(t *testing.T) {
	zipFile := filepath.Join(t.TempDir(), "scene.zip")
	require.NoError(t, WriteScene(testScene(), zipFile))

	info, err := os.Stat(zipFile)
	require.NoError(t, err)
	require.NotZero(t, info.Size())
}

func TestWriteSceneToMissingDir(t *testing.T) {
	zipFile := filepath.Join(t.TempDir(), "missing", "scene.zip")
	require.Error(t, WriteScene(testScene(), zipFile))
}
