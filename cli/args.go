package cli

import (
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// floatArgs parses between minArgs and maxArgs positional float arguments.
func floatArgs(c *cli.Context, minArgs, maxArgs int) ([]float64, error) {
	if n := c.Args().Len(); n < minArgs || n > maxArgs {
		if minArgs == maxArgs {
			return nil, errors.Errorf("%s expects %d arguments, got %d", c.Command.Name, minArgs, n)
		}
		return nil, errors.Errorf("%s expects %d to %d arguments, got %d", c.Command.Name, minArgs, maxArgs, n)
	}
	return parseFloats(c.Args().Slice())
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i+1)
		}
		out = append(out, v)
	}
	return out, nil
}

func intArgs(c *cli.Context, n int) ([]int, error) {
	if c.Args().Len() != n {
		return nil, errors.Errorf("%s expects %d arguments, got %d", c.Command.Name, n, c.Args().Len())
	}
	out := make([]int, 0, n)
	for i, arg := range c.Args().Slice() {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i+1)
		}
		out = append(out, v)
	}
	return out, nil
}

func vectorArg(c *cli.Context) (r3.Vector, error) {
	v, err := floatArgs(c, 3, 3)
	if err != nil {
		return r3.Vector{}, err
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}
