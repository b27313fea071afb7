package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/ashtrace/asset"
	"github.com/achilleasa/ashtrace/asset/compiler/input"
	"github.com/achilleasa/ashtrace/log"
	"github.com/achilleasa/ashtrace/types"
)

// Reads the geometry of a wavefront obj file. All objects and groups in the
// file are merged into a single geometry; materials are assigned by the
// scene descriptor so material libraries are ignored.
type wavefrontReader struct {
	logger log.Logger
	geom   *input.Geometry
}

func newWavefrontReader() *wavefrontReader {
	return &wavefrontReader{
		logger: log.New("wavefront reader"),
		geom: &input.Geometry{
			Vertices: make([]types.Vec3, 0),
			UVs:      make([]types.Vec2, 0),
			Normals:  make([]types.Vec3, 0),
			Faces:    make([]input.Face, 0),
		},
	}
}

// Parse obj geometry.
func (r *wavefrontReader) Read(res *asset.Resource) (*input.Geometry, error) {
	r.logger.Infof(`parsing geometry from "%s"`, res.Path())
	start := time.Now()

	var lineNum int
	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		var err error
		switch lineTokens[0] {
		case "v":
			var v types.Vec3
			v, err = parseVec3(lineTokens)
			r.geom.Vertices = append(r.geom.Vertices, v)
		case "vn":
			var v types.Vec3
			v, err = parseVec3(lineTokens)
			r.geom.Normals = append(r.geom.Normals, v)
		case "vt":
			var v types.Vec2
			v, err = parseVec2(lineTokens)
			r.geom.UVs = append(r.geom.UVs, v)
		case "f":
			err = r.parseFace(lineTokens)
		case "o", "g", "s", "usemtl", "mtllib":
		default:
			r.logger.Debugf(`[%s: %d] ignoring unsupported statement "%s"`, res.Path(), lineNum, lineTokens[0])
		}

		if err != nil {
			return nil, fmt.Errorf("[%s: %d] %w", res.Path(), lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("[%s] %w", res.Path(), err)
	}

	if err := r.geom.Validate(); err != nil {
		return nil, fmt.Errorf("[%s] %w", res.Path(), err)
	}

	r.logger.Infof(
		`parsed "%s" in %d ms; vertices: %d, uvs: %d, normals: %d, triangles: %d`,
		res.Path(), time.Since(start).Nanoseconds()/1e6,
		len(r.geom.Vertices), len(r.geom.UVs), len(r.geom.Normals), len(r.geom.Faces),
	)
	return r.geom, nil
}

// Parse face definition. Each face definition consists of 3 or 4 arguments,
// one for each vertex, in the vertexIndex/uvIndex/normalIndex format.
// Indices start from 1 and may be negative to indicate an offset off the end
// of the coordinate list. Quads are split into two triangles.
func (r *wavefrontReader) parseFace(lineTokens []string) error {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return fmt.Errorf(`%w: unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, input.ErrMalformedGeometry, len(lineTokens)-1)
	}

	var corners [4]input.FaceVertex
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")
		if len(vTokens) != 3 || vTokens[0] == "" || vTokens[1] == "" || vTokens[2] == "" {
			return fmt.Errorf("%w: face argument %d (%q) must specify vertex, uv and normal indices", input.ErrMalformedGeometry, arg, lineTokens[arg+1])
		}

		var err error
		if corners[arg].V, err = selectFaceCoordIndex(vTokens[0], len(r.geom.Vertices)); err != nil {
			return fmt.Errorf("%w: could not parse vertex coord for face argument %d: %s", input.ErrMalformedGeometry, arg, err)
		}
		if corners[arg].T, err = selectFaceCoordIndex(vTokens[1], len(r.geom.UVs)); err != nil {
			return fmt.Errorf("%w: could not parse tex coord for face argument %d: %s", input.ErrMalformedGeometry, arg, err)
		}
		if corners[arg].N, err = selectFaceCoordIndex(vTokens[2], len(r.geom.Normals)); err != nil {
			return fmt.Errorf("%w: could not parse normal coord for face argument %d: %s", input.ErrMalformedGeometry, arg, err)
		}
	}

	r.geom.AddFace([3]input.FaceVertex{corners[0], corners[1], corners[2]})
	if len(lineTokens) == 5 {
		r.geom.AddFace([3]input.FaceVertex{corners[0], corners[2], corners[3]})
	}
	return nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var offset int
	if index < 0 {
		offset = coordListLen + int(index)
	} else {
		offset = int(index - 1)
	}
	if offset < 0 || offset >= coordListLen {
		return -1, fmt.Errorf("index %d out of bounds", index)
	}
	return offset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row. A third (w) component is ignored.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
