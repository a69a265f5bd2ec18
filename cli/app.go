// Package cli contains the camgeom command line interface.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	configFlag     = "config"
	cameraFlag     = "camera"
	debugFlag      = "debug"
	gridStepFlag   = "grid-step"
	gridExtentFlag = "grid-extent"
)

// NewApp returns a new app with the camgeom commands, Writer set to out, and ErrWriter set to
// errOut. Logs go to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "camgeom",
		Usage:           "project, unproject and measure with configured cameras",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     configFlag,
				Aliases:  []string{"c"},
				Usage:    "load cameras from `FILE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:  cameraFlag,
				Usage: "use the camera named `NAME` instead of the first configured one",
			},
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "cameras",
				Usage:  "list the configured cameras",
				Action: withEnv(camerasAction),
			},
			{
				Name:      "project",
				Usage:     "project a world point to image pixels",
				ArgsUsage: "X Y Z",
				Action:    withEnv(projectAction),
			},
			{
				Name:      "unproject",
				Usage:     "back-project a pixel to a world point, at the depth of the origin if DEPTH is omitted",
				ArgsUsage: "U V [DEPTH]",
				Action:    withEnv(unprojectAction),
			},
			{
				Name:      "depth",
				Usage:     "print the depth of a world point along the optical axis",
				ArgsUsage: "X Y Z",
				Action:    withEnv(depthAction),
			},
			{
				Name:   "frustum",
				Usage:  "print the frustum planes of the camera",
				Action: withEnv(frustumAction),
			},
			{
				Name:      "transform",
				Usage:     "print the transform from image points onto the plane A*x + B*y + C*z + D = 0",
				ArgsUsage: "A B C D",
				Action:    withEnv(transformAction),
			},
			{
				Name:      "crop",
				Usage:     "print the camera of an NI x NJ crop starting at pixel (I0, J0)",
				ArgsUsage: "I0 NI J0 NJ",
				Action:    withEnv(cropAction),
			},
			{
				Name:      "scale",
				Usage:     "print the camera of the image resampled by FACTOR",
				ArgsUsage: "FACTOR",
				Action:    withEnv(scaleAction),
			},
			{
				Name:      "ruler",
				Usage:     "place a ruler in the camera view and print its world endpoints",
				ArgsUsage: "U0 V0 U1 V1",
				Action:    withEnv(rulerAction),
			},
			{
				Name:      "render",
				Usage:     "draw the ground grid and an optional ruler as seen by the camera into a PNG",
				ArgsUsage: "FILE [U0 V0 U1 V1]",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  gridStepFlag,
						Usage: "spacing of the ground grid lines",
						Value: 1,
					},
					&cli.Float64Flag{
						Name:  gridExtentFlag,
						Usage: "distance the ground grid reaches from the ground origin",
						Value: 10,
					},
				},
				Action: withEnv(renderAction),
			},
		},
	}
}
