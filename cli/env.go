package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/camgeom/config"
	"go.viam.com/camgeom/logging"
	"go.viam.com/camgeom/rimage/transform"
)

const loggerName = "camgeom"

// commandEnv is what every command works with: the config, the selected camera and loggers.
type commandEnv struct {
	cfg        *config.Config
	cameraName string
	camera     *transform.PerspectiveCamera
	logger     logging.Logger
	registry   *logging.Registry
}

func newCommandEnv(c *cli.Context) (*commandEnv, error) {
	level := logging.INFO
	if c.Bool(debugFlag) {
		level = logging.DEBUG
	}
	registry := logging.NewRegistry(level)
	logger := registry.GetOrRegister(loggerName, logging.NewBlankLogger(loggerName))
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))

	cfg, err := config.Read(c.String(configFlag), registry.Sublogger(logger, loggerName, "config"))
	if err != nil {
		return nil, err
	}
	if !c.Bool(debugFlag) {
		cfgLevel, err := cfg.Level()
		if err != nil {
			return nil, err
		}
		registry.SetDefaultLevel(cfgLevel)
	}
	if err := registry.UpdateConfig(cfg.Log, logger); err != nil {
		return nil, err
	}

	camCfg, err := cfg.Camera(c.String(cameraFlag))
	if err != nil {
		return nil, err
	}
	camera, err := camCfg.Build(cfg.Viewer)
	if err != nil {
		return nil, err
	}
	logger.Debugw("using camera", "name", camCfg.Name, "intrinsics", camera.Camera().Intrinsics().String())

	return &commandEnv{
		cfg:        cfg,
		cameraName: camCfg.Name,
		camera:     camera,
		logger:     logger,
		registry:   registry,
	}, nil
}

func withEnv(action func(*cli.Context, *commandEnv) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		env, err := newCommandEnv(c)
		if err != nil {
			return errors.Wrap(err, "failed to load camera")
		}
		defer goutils.UncheckedErrorFunc(env.logger.Sync)
		return action(c, env)
	}
}
