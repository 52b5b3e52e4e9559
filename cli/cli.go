// Package cli is the animutil command line: process a project, autodetect
// one from an object file, list candidates, dump decoded structures or
// browse them over http.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/objex-tools/animutil/config"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/logs"
	"github.com/objex-tools/animutil/project"
	"github.com/objex-tools/animutil/utils"
	"github.com/objex-tools/animutil/web"
)

const Version = "1.2.0"

func flagInput() cli.Flag {
	return &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "object file to decode.",
	}
}

func flagJSON() cli.Flag {
	return &cli.StringFlag{
		Name:    "json",
		Aliases: []string{"j"},
		Usage:   "project file (json or yaml).",
	}
}

func flagSegment() cli.Flag {
	return &cli.StringFlag{
		Name:  "segment",
		Value: "6",
		Usage: "segment the input object is loaded at, autodetection only.",
		Action: func(c *cli.Context, s string) error {
			_, err := parseSegment(s)
			return err
		},
	}
}

var (
	flagAutodetect = &cli.BoolFlag{
		Name:    "autodetect",
		Aliases: []string{"a"},
		Usage:   "write a project for the input file by scanning it for skeletons and animations.",
	}
	flagYes = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "answer yes to every prompt.",
	}
	flagFormat = &cli.StringFlag{
		Name:  "format",
		Value: config.FormatJSON,
		Usage: "format of autodetected projects, json or yaml.",
		Action: func(c *cli.Context, f string) error {
			if f != config.FormatJSON && f != config.FormatYAML {
				return errors.Wrapf(errs.ErrMalformedConfig, "unknown project format %q", f)
			}
			return nil
		},
	}
	flagEncoding = &cli.StringFlag{
		Name:  "encoding",
		Value: config.UTF8,
		Usage: "encoding of project files without a byte order mark.",
	}
	flagObjexVersion = &cli.IntFlag{
		Name:  "objex-version",
		Value: int(config.DefaultObjexVersion),
		Usage: "OBJEX dialect served by the browser when a request names none, 1 or 2.",
	}
	flagVerbose = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "debug logging.",
	}
)

func parseSegment(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil || n >= config.SegmentCount {
		return 0, errors.Wrapf(errs.ErrMalformedConfig, "segment %q", s)
	}
	return uint8(n), nil
}

type Wrapper struct {
	app *cli.App
	// prompter overrides the interactive prompt, used when set.
	prompter Prompter
}

func NewWrapper() *Wrapper {
	wrapper := &Wrapper{
		app: &cli.App{
			Name:    "animutil",
			Usage:   "decode zobj skeletons and animations and export them as OBJEX, glTF and more",
			Version: Version,
			Writer:  os.Stdout,
		},
	}
	wrapper.withFlags()
	wrapper.withAction()
	wrapper.withCommands()
	return wrapper
}

func (wrapper *Wrapper) Run(args []string) error {
	return wrapper.app.Run(args)
}

func (wrapper *Wrapper) withFlags() {
	wrapper.app.Flags = []cli.Flag{
		flagInput(),
		flagJSON(),
		flagAutodetect,
		flagYes,
		flagSegment(),
		flagFormat,
		flagEncoding,
		flagObjexVersion,
		flagVerbose,
	}
	wrapper.app.Before = func(ctx *cli.Context) error {
		if ctx.Bool("verbose") {
			if err := logs.Init(true); err != nil {
				return err
			}
		}
		v := config.ObjexVersion(ctx.Int("objex-version"))
		if err := config.CheckObjexVersion(v); err != nil {
			return err
		}
		config.SetObjexVersion(v)
		return config.SetEncoding(ctx.String("encoding"))
	}
}

func (wrapper *Wrapper) prompt(ctx *cli.Context) Prompter {
	switch {
	case ctx.Bool("yes"):
		return yesPrompter{}
	case wrapper.prompter != nil:
		return wrapper.prompter
	default:
		return readlinePrompter{stdout: ctx.App.Writer}
	}
}

func readInput(path string) ([]byte, string, error) {
	if path == "" {
		return nil, "", nil
	}
	path, err := config.ExpandPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrapf(errs.ErrNoInput, "%v", err)
	}
	return data, path, nil
}

// load reads the input and project flags and decodes the project.
func load(ctx *cli.Context) (*project.Result, error) {
	input, inputPath, err := readInput(ctx.String("input"))
	if err != nil {
		return nil, err
	}
	if ctx.String("json") == "" {
		return nil, errors.Wrapf(errs.ErrMalformedConfig, "a project file is required")
	}
	proj, err := config.LoadProject(ctx.String("json"))
	if err != nil {
		return nil, err
	}
	return project.NewProcessor(input, inputPath).Load(context.Background(), proj)
}

func (wrapper *Wrapper) withAction() {
	wrapper.app.Action = func(ctx *cli.Context) error {
		input, inputPath, err := readInput(ctx.String("input"))
		if err != nil {
			return err
		}
		format := ctx.String("format")

		p, err := decide(inputPath, ctx.String("json"), ctx.Bool("autodetect"), format, wrapper.prompt(ctx))
		if err != nil {
			return err
		}

		if p.Autodetect {
			seg, _ := parseSegment(ctx.String("segment"))
			path, err := project.Autodetect(input, inputPath, seg, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "Project written to %s\n", path)
			return nil
		}

		proj, err := config.LoadProject(p.Project)
		if err != nil {
			return err
		}
		r, err := project.NewProcessor(input, inputPath).Process(ctx.Context, proj)
		if err != nil {
			return err
		}
		logs.Info("Done!", zap.Int("skeletons", len(r.Skeletons)),
			zap.Int("animations", len(r.Animations)+len(r.LinkAnimations)), zap.Int("skipped", r.Skipped))
		return nil
	}
}

func (wrapper *Wrapper) withCommands() {
	wrapper.app.Commands = []*cli.Command{
		{
			Name:  "find",
			Usage: "print skeleton and animation candidates of the input file as a project",
			Flags: []cli.Flag{flagInput(), flagSegment()},
			Action: func(ctx *cli.Context) error {
				input, inputPath, err := readInput(ctx.String("input"))
				if err != nil {
					return err
				}
				if len(input) == 0 {
					return errors.Wrapf(errs.ErrNoInput, "find needs an input file")
				}
				seg, _ := parseSegment(ctx.String("segment"))
				proj := config.NewDetectedProject(config.FileBase(inputPath), int(seg), project.Detect(input, seg))
				return config.WriteProject(ctx.App.Writer, ctx.String("format"), proj)
			},
		},
		{
			Name:  "dump",
			Usage: "print the decoded skeletons and animations of a project",
			Flags: []cli.Flag{
				flagInput(),
				flagJSON(),
				&cli.StringFlag{Name: "name", Usage: "dump only the structure with this name."},
			},
			Action: func(ctx *cli.Context) error {
				r, err := load(ctx)
				if err != nil {
					return err
				}
				defer r.Cleanup()

				if name := ctx.String("name"); name != "" {
					if s, ok := r.Skeleton(name); ok {
						utils.Dump(ctx.App.Writer, s)
						return nil
					}
					if a, ok := r.Animation(name); ok {
						utils.Dump(ctx.App.Writer, a)
						return nil
					}
					return errors.Errorf("Nothing named %q in the project", name)
				}
				utils.Dump(ctx.App.Writer, r.Skeletons, r.Animations, r.LinkAnimations)
				return nil
			},
		},
		{
			Name:  "serve",
			Usage: "browse a decoded project over http",
			Flags: []cli.Flag{
				flagInput(),
				flagJSON(),
				&cli.StringFlag{Name: "addr", Value: ":8000", Usage: "address of server."},
				&cli.StringFlag{Name: "web", Usage: "directory holding the frontend in data/."},
			},
			Action: func(ctx *cli.Context) error {
				r, err := load(ctx)
				if err != nil {
					return err
				}
				defer r.Cleanup()
				return web.StartServer(ctx.String("addr"), r, ctx.String("web"))
			},
		},
	}
}
