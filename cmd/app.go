package cmd

import "github.com/urfave/cli"

// Create the command line application.
func NewApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "ashtrace"
	app.Usage = "compile scenes for progressive GPU path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:   "log-level",
			Value:  "notice",
			Usage:  "log level (debug, info, notice, warning, error)",
			EnvVar: "ASHTRACE_LOG_LEVEL",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile scene descriptors into a binary compressed format",
			Description: `
Parse a scene descriptor (json or yaml) and the wavefront obj models it
references, build a two-level BVH tree to optimize ray intersection tests and
pack all scene data into a data texture that can be uploaded to the GPU.

The compiled scene is written to a zip archive next to each descriptor.`,
			ArgsUsage: "scene_file1.json scene_file2.yaml ...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "metrics-addr",
					Usage:  "serve prometheus metrics on this address while compiling",
					EnvVar: "ASHTRACE_METRICS_ADDR",
				},
				cli.StringFlag{
					Name:  "out-dir, o",
					Usage: "write compiled scenes to this directory",
				},
			},
			Action: CompileScene,
		},
		{
			Name:      "info",
			Usage:     "print compiled scene information",
			ArgsUsage: "scene.zip",
			Action:    ShowSceneInfo,
		},
	}

	return app
}
