package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/camgeom/rimage"
	"go.viam.com/camgeom/rimage/transform"
	"go.viam.com/camgeom/ruler"
)

var frustumPlaneNames = []string{"left", "right", "bottom", "top", "near", "far"}

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

func formatVector(v r3.Vector) string {
	return fmt.Sprintf("%.4f %.4f %.4f", v.X, v.Y, v.Z)
}

func formatPixel(p r2.Point) string {
	return fmt.Sprintf("%.4f %.4f", p.X, p.Y)
}

// camerasAction is the corresponding Action for 'cameras'.
func camerasAction(c *cli.Context, env *commandEnv) error {
	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Name", "Focal length", "Principal point", "Center", "Image size"})
	for _, camCfg := range env.cfg.Cameras {
		pc, err := camCfg.Build(env.cfg.Viewer)
		if err != nil {
			return err
		}
		intrinsics := pc.Camera().Intrinsics()
		width, height := pc.ImageDimensions()
		name := camCfg.Name
		if name == env.cameraName {
			name += " *"
		}
		t.AppendRow(table.Row{
			name,
			fmt.Sprintf("%.4f", intrinsics.FocalLength),
			formatPixel(intrinsics.PrincipalPoint),
			formatVector(pc.Camera().Center()),
			fmt.Sprintf("%dx%d", width, height),
		})
	}
	t.Render()
	return nil
}

// projectAction is the corresponding Action for 'project'.
func projectAction(c *cli.Context, env *commandEnv) error {
	pt, err := vectorArg(c)
	if err != nil {
		return err
	}
	pixel, ok := env.camera.ProjectPoint(pt)
	if !ok {
		printf(c.App.Writer, "behind camera (depth %.4f)", env.camera.Depth(pt))
		return nil
	}
	printf(c.App.Writer, "%s", formatPixel(pixel))
	return nil
}

// unprojectAction is the corresponding Action for 'unproject'.
func unprojectAction(c *cli.Context, env *commandEnv) error {
	args, err := floatArgs(c, 2, 3)
	if err != nil {
		return err
	}
	pixel := r2.Point{X: args[0], Y: args[1]}
	var pt r3.Vector
	if len(args) == 3 {
		pt = env.camera.UnprojectPoint(pixel, args[2])
	} else {
		pt = env.camera.UnprojectPointAtOrigin(pixel)
	}
	printf(c.App.Writer, "%s", formatVector(pt))
	return nil
}

// depthAction is the corresponding Action for 'depth'.
func depthAction(c *cli.Context, env *commandEnv) error {
	pt, err := vectorArg(c)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%.4f", env.camera.Depth(pt))
	return nil
}

// frustumAction is the corresponding Action for 'frustum'.
func frustumAction(c *cli.Context, env *commandEnv) error {
	planes := env.camera.GetFrustumPlanes()
	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Plane", "A", "B", "C", "D"})
	for i, plane := range lo.Chunk(planes[:], 4) {
		row := table.Row{frustumPlaneNames[i]}
		for _, v := range plane {
			row = append(row, fmt.Sprintf("%.4f", v))
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

// transformAction is the corresponding Action for 'transform'.
func transformAction(c *cli.Context, env *commandEnv) error {
	args, err := floatArgs(c, 4, 4)
	if err != nil {
		return err
	}
	m, err := env.camera.GetTransform([4]float64{args[0], args[1], args[2], args[3]})
	if err != nil {
		return err
	}
	printMatrix(c.App.Writer, m)
	return nil
}

// cropAction is the corresponding Action for 'crop'.
func cropAction(c *cli.Context, env *commandEnv) error {
	args, err := intArgs(c, 4)
	if err != nil {
		return err
	}
	cropped, err := env.camera.CropCamera(args[0], args[1], args[2], args[3])
	if err != nil {
		return err
	}
	printCamera(c.App.Writer, cropped)
	return nil
}

// scaleAction is the corresponding Action for 'scale'.
func scaleAction(c *cli.Context, env *commandEnv) error {
	args, err := floatArgs(c, 1, 1)
	if err != nil {
		return err
	}
	scaled, err := env.camera.ScaledK(args[0])
	if err != nil {
		return err
	}
	printCamera(c.App.Writer, scaled)
	return nil
}

// rulerAction is the corresponding Action for 'ruler'. The endpoints are placed in the camera
// view and land on the configured ground plane.
func rulerAction(c *cli.Context, env *commandEnv) error {
	args, err := floatArgs(c, 4, 4)
	if err != nil {
		return err
	}
	world, camera := placeRuler(env, args)

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Endpoint", "Pixel", "World"})
	for _, id := range []int{ruler.FirstEndpoint, ruler.SecondEndpoint} {
		pixel := camera.PointWorldPosition(id)
		t.AppendRow(table.Row{id, formatPixel(r2.Point{X: pixel.X, Y: pixel.Y}), formatVector(world.PointWorldPosition(id))})
	}
	t.AppendFooter(table.Row{"", "Distance", fmt.Sprintf("%.4f", camera.Distance())})
	t.Render()
	return nil
}

// renderAction is the corresponding Action for 'render'.
func renderAction(c *cli.Context, env *commandEnv) error {
	if c.Args().Len() != 1 && c.Args().Len() != 5 {
		return errors.Errorf("%s expects FILE and optionally 4 ruler pixel coordinates, got %d arguments",
			c.Command.Name, c.Args().Len())
	}
	opts := rimage.DefaultViewOptions()
	opts.Ground = env.cfg.Viewer.GroundPlane()
	opts.GridStep = c.Float64(gridStepFlag)
	opts.GridExtent = c.Float64(gridExtentFlag)
	if c.Args().Len() == 5 {
		args, err := parseFloats(c.Args().Tail())
		if err != nil {
			return err
		}
		world, _ := placeRuler(env, args)
		opts.Ruler = &[2]r3.Vector{
			world.PointWorldPosition(ruler.FirstEndpoint),
			world.PointWorldPosition(ruler.SecondEndpoint),
		}
	}

	path := c.Args().First()
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rimage.EncodeCameraView(f, env.camera, opts); err != nil {
		return multierr.Combine(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return err
	}
	env.logger.Debugw("rendered camera view", "path", path)
	printf(c.App.Writer, "wrote %s", path)
	return nil
}

// placeRuler places a ruler between two camera pixels and returns the synchronized world and
// camera widgets.
func placeRuler(env *commandEnv, pixels []float64) (*ruler.State, *ruler.State) {
	world, camera := ruler.NewState(ruler.WorldView), ruler.NewState(ruler.CameraView)
	provider := ruler.CameraProviderFunc(func() (*transform.PerspectiveCamera, bool) {
		return env.camera, true
	})
	sync := ruler.NewSynchronizer(world, camera, provider, nil, env.cfg.Viewer.RulerConfig(),
		env.registry.Sublogger(env.logger, loggerName, "ruler"))
	sync.Attach()
	sync.EnableWidgets(true)

	camera.PlacePoint(ruler.FirstEndpoint, r3.Vector{X: pixels[0], Y: pixels[1]})
	camera.PlacePoint(ruler.SecondEndpoint, r3.Vector{X: pixels[2], Y: pixels[3]})
	return world, camera
}

func printCamera(w io.Writer, pc *transform.PerspectiveCamera) {
	intrinsics := pc.Camera().Intrinsics()
	width, height := pc.ImageDimensions()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendRows([]table.Row{
		{"Focal length", fmt.Sprintf("%.4f", intrinsics.FocalLength)},
		{"Principal point", formatPixel(intrinsics.PrincipalPoint)},
		{"Aspect ratio", fmt.Sprintf("%.4f", intrinsics.AspectRatio)},
		{"Skew", fmt.Sprintf("%.4f", intrinsics.Skew)},
		{"Image size", fmt.Sprintf("%dx%d", width, height)},
		{"Center", formatVector(pc.Camera().Center())},
	})
	t.Render()
}

func printMatrix(w io.Writer, m mat.Matrix) {
	rows, cols := m.Dims()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	for i := 0; i < rows; i++ {
		row := make(table.Row, 0, cols)
		for j := 0; j < cols; j++ {
			row = append(row, fmt.Sprintf("%.6g", m.At(i, j)))
		}
		t.AppendRow(row)
	}
	t.Render()
}
