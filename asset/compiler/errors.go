package compiler

import (
	"errors"

	"github.com/achilleasa/ashtrace/asset/compiler/bvh"
	"github.com/achilleasa/ashtrace/asset/compiler/input"
)

var (
	ErrNoMeshes         = errors.New("compiler: scene contains no meshes")
	ErrMissingMaterial  = errors.New("compiler: mesh has no material")
	ErrUnresolvedBitmap = errors.New("compiler: material references an unresolved bitmap")
)

// Get a short label describing err for use in metrics.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrNoMeshes):
		return "no_meshes"
	case errors.Is(err, ErrMissingMaterial):
		return "missing_material"
	case errors.Is(err, ErrUnresolvedBitmap):
		return "unresolved_bitmap"
	case errors.Is(err, input.ErrMalformedGeometry):
		return "malformed_geometry"
	case errors.Is(err, bvh.ErrSplitMismatch),
		errors.Is(err, bvh.ErrEmptyWorkList),
		errors.Is(err, bvh.ErrUnknownNodeKind),
		errors.Is(err, bvh.ErrInvalidNode),
		errors.Is(err, bvh.ErrBoundsMismatch):
		return "bvh"
	}
	return "unknown"
}
