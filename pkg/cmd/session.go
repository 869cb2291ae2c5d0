package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/yami-cli/yami/pkg/config"
	"github.com/yami-cli/yami/pkg/consts"
	"github.com/yami-cli/yami/pkg/docker"
	"github.com/yami-cli/yami/pkg/errcode"
	"github.com/yami-cli/yami/pkg/milvus"
	"github.com/yami-cli/yami/pkg/output"
)

// Session carries one invocation's state from the global flags down to
// the command handlers: the resolved output mode, the renderer, the
// confirmation gate, and the seams tests replace (env, stdin, backend
// dialer, container engine).
type Session struct {
	getenv  func(string) string
	connect milvus.ConnectFunc
	engine  docker.DockerClient
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer

	flags    config.Flags
	mode     output.Mode
	renderer *output.Renderer
	gate     *gate
	conn     config.Connection
}

// operation is a single backend call: the dispatcher resolves the
// connection, optionally confirms, dials, runs it, and renders the
// result under the command's name.
type operation struct {
	// name appears in the envelope's meta.command field.
	name string

	// confirm, when non-empty, is the question asked before a
	// destructive operation proceeds.
	confirm string

	run func(ctx context.Context, backend milvus.Backend) (any, error)
}

// exitError carries the process exit code out through cli.Command.Run.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

// setup reads the global flags once the root command has parsed them.
// It runs in Before, so every action sees a fully configured session.
func (s *Session) setup(cmd *cli.Command) error {
	mode, err := output.ParseMode(s.envMode(cmd.String("mode")))
	if err != nil {
		return err
	}

	format := output.DefaultFormat(mode)
	if raw := cmd.String("output"); raw != "" {
		if format, err = output.ParseFormat(raw); err != nil {
			return err
		}
	}
	if err := output.ValidateFormat(mode, format); err != nil {
		return err
	}

	s.mode = mode
	s.renderer = output.NewRenderer(output.Options{
		Mode:   mode,
		Format: format,
		Quiet:  cmd.Bool("quiet"),
		Stdout: s.stdout,
		Stderr: s.stderr,
	})

	s.flags = config.Flags{
		URI:      cmd.String("uri"),
		Token:    cmd.String("token"),
		Database: cmd.String("db"),
		Profile:  cmd.String("profile"),
	}

	s.gate = &gate{
		force:       cmd.Bool("force"),
		interactive: interactiveStdin(s.stdin),
		in:          s.stdin,
		out:         s.stderr,
	}

	if cmd.Bool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	}

	return nil
}

// envMode picks the output mode: the --mode flag wins, then YAMI_MODE,
// then the agent default.
func (s *Session) envMode(flag string) string {
	if flag != "" {
		return flag
	}
	if env := s.getenv(consts.EnvMode); env != "" {
		return env
	}
	return string(output.ModeAgent)
}

// store opens the profile store in the configured directory.
func (s *Session) store() (*config.Store, error) {
	dir, err := config.Dir(s.getenv)
	if err != nil {
		return nil, err
	}
	return config.NewStore(dir), nil
}

// dockerEngine resolves the container engine for sandbox commands.
func (s *Session) dockerEngine() (*docker.Engine, error) {
	if s.engine != nil {
		return docker.NewEngine(s.engine), nil
	}
	return docker.NewEnvEngine()
}

// run dispatches an operation against the remote backend and renders
// the outcome. The returned error is always an *exitError so the exit
// code survives the trip through cli.Command.Run.
func (s *Session) run(ctx context.Context, op operation) error {
	started := time.Now()

	data, err := s.dispatch(ctx, op)
	_ = s.renderer.Render(output.Build(op.name, data, err, time.Since(started)))

	if err != nil {
		return &exitError{code: 1, err: err}
	}
	return nil
}

func (s *Session) dispatch(ctx context.Context, op operation) (any, error) {
	conn, err := s.resolve()
	if err != nil {
		return nil, err
	}

	if op.confirm != "" {
		if err := s.gate.confirm(op.confirm); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"command": op.name,
		"uri":     conn.URI,
		"db":      conn.Database,
	}).Debug("dispatching")

	backend, err := s.connect(ctx, conn)
	if err != nil {
		return nil, milvus.Translate(err)
	}
	defer backend.Close()

	data, err := op.run(ctx, backend)
	if err != nil {
		return nil, milvus.Translate(err)
	}
	return data, nil
}

func (s *Session) resolve() (config.Connection, error) {
	store, err := s.store()
	if err != nil {
		return config.Connection{}, err
	}

	conn, err := config.Resolve(s.flags, s.getenv, store)
	if err != nil {
		return config.Connection{}, err
	}

	s.conn = conn
	return conn, nil
}

// runLocal renders a result produced without a backend connection
// (profile and sandbox commands). It shares the envelope contract with
// run so agents see a uniform shape.
func (s *Session) runLocal(name string, fn func() (any, error)) error {
	started := time.Now()

	data, err := fn()
	_ = s.renderer.Render(output.Build(name, data, err, time.Since(started)))

	if err != nil {
		return &exitError{code: 1, err: err}
	}
	return nil
}

// usage reports an error raised before any operation was dispatched:
// bad flag values, missing arguments, unknown subcommands. No meta is
// attached and the exit code is 2.
func (s *Session) usage(err error) error {
	if s.renderer == nil {
		// Flag parsing failed before Before ran; fall back to a plain
		// agent-shaped envelope on stderr.
		s.renderer = output.NewRenderer(output.Options{
			Mode:   output.ModeAgent,
			Format: output.FormatJSON,
			Stdout: s.stderr,
			Stderr: s.stderr,
		})
	}
	_ = s.renderer.Render(output.UsageError(err))
	return &exitError{code: 2, err: err}
}

// group builds a command that only routes to its subcommands; invoking
// it bare (or with an unknown action) is a usage error rather than the
// library's default exit(3) help topic path.
func (s *Session) group(cmd *cli.Command) *cli.Command {
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		if name := c.Args().First(); name != "" {
			return s.usage(errcode.Newf(errcode.MissingArgument,
				"unknown action %q for %q (run 'yami %s --help')", name, c.Name, c.Name))
		}
		return s.usage(errcode.Newf(errcode.MissingArgument,
			"%q requires an action (run 'yami %s --help')", c.Name, c.Name))
	}
	return cmd
}

// requireArgs validates positional arity before an action dispatches.
func (s *Session) requireArgs(cmd *cli.Command, names ...string) ([]string, error) {
	args := cmd.Args().Slice()
	if len(args) < len(names) {
		return nil, s.usage(errcode.Newf(errcode.MissingArgument,
			"missing required argument %q", names[len(args)]))
	}
	if len(args) > len(names) {
		return nil, s.usage(errcode.Newf(errcode.ValidationError,
			"unexpected argument %q", args[len(names)]))
	}
	return args, nil
}

func newSession(opts Options) *Session {
	s := &Session{
		getenv:  opts.Getenv,
		connect: opts.Connect,
		engine:  opts.Docker,
		stdin:   opts.Stdin,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
	}

	if s.getenv == nil {
		s.getenv = os.Getenv
	}
	if s.connect == nil {
		s.connect = milvus.Dial
	}
	if s.stdin == nil {
		s.stdin = os.Stdin
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}

	logrus.SetOutput(s.stderr)
	logrus.SetLevel(logrus.WarnLevel)

	return s
}
