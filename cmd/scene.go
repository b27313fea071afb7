package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/achilleasa/ashtrace/asset/scene/reader"
	"github.com/achilleasa/ashtrace/asset/scene/writer"
	"github.com/urfave/cli"
)

// Compile scene descriptors to the binary format.
func CompileScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() == 0 {
		return errors.New("missing scene descriptor file")
	}

	if addr := ctx.String("metrics-addr"); addr != "" {
		stop, err := serveMetrics(addr)
		if err != nil {
			return err
		}
		defer stop()
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		switch strings.ToLower(filepath.Ext(sceneFile)) {
		case ".json", ".yaml", ".yml":
		default:
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		logger.Noticef("parsing and compiling scene: %s", sceneFile)
		sc, err := reader.ReadScene(sceneFile)
		if err != nil {
			return err
		}

		// Display compiled scene info
		logger.Noticef("scene information:\n%s", sc.Stats())

		err = writer.WriteScene(sc, outputFile(sceneFile, ctx.String("out-dir")))
		if err != nil {
			return err
		}
	}

	return nil
}

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing compiled scene zip file")
	}

	sceneFile := ctx.Args().First()
	if !strings.HasSuffix(sceneFile, ".zip") {
		return errors.New("only compiled scene files with a .zip extension are supported")
	}

	sc, err := reader.ReadScene(sceneFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.App.Writer, "scene %s: %d triangles, bvh depth %d\n%s", sc.ID, sc.TriangleCount, sc.MaxBvhDepth, sc.Stats())
	return nil
}

// Get the archive path for a scene descriptor. Archives are written next to
// the descriptor unless outDir is set.
func outputFile(sceneFile, outDir string) string {
	zipFile := strings.TrimSuffix(sceneFile, filepath.Ext(sceneFile)) + ".zip"
	if outDir != "" {
		zipFile = filepath.Join(outDir, filepath.Base(zipFile))
	}
	return zipFile
}
