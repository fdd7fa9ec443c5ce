// Command shapequery runs geometric queries against shape descriptions and
// evaluates query scripts.
//
//	shapequery [-config file] [-log-level level] <command> [flags]
//
// Commands:
//
//	eval <script|->                          run a script, print its value
//	raycast  -shape f -ray ox,oy,oz:dx,dy,dz  ray hits, nearest first
//	inside   -shape f -p x,y,z ...            signed distances
//	edge     -shape f -p x,y,z ...            nearest surface points
//	distances -ref x,y,z -p x,y,z ... [-sort n]
//	mesh     -shape f [-merged]               preview meshes
//	validate -shape f                         degenerate shape warnings
//
// Results are written to stdout as JSON. Vectors use the keys x, y and z;
// NaN and infinite values are written as the strings "NaN", "+Inf", "-Inf".
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/chazu/shapequery/pkg/config"
	"github.com/chazu/shapequery/pkg/descriptor"
	"github.com/chazu/shapequery/pkg/geom"
	"github.com/chazu/shapequery/pkg/logging"
	"github.com/chazu/shapequery/pkg/query"
)

// errUsage marks command line mistakes; they exit with status 2.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shapequery", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	logLevel := fs.String("log-level", "", "override the configured log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "shapequery: missing command")
		return 2
	}

	c := &cli{app: NewApp(cfg, log), stdin: stdin, stdout: stdout, stderr: stderr}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if err := c.dispatch(ctx, cmd, rest); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			if !errors.Is(err, flag.ErrHelp) {
				fmt.Fprintln(stderr, err)
			}
			return 2
		}
		log.Debug("command failed", zap.String("command", cmd), zap.Error(err))
		fmt.Fprintln(stderr, "shapequery:", err)
		return 1
	}
	return 0
}

// cli holds the per-invocation state shared by the subcommands.
type cli struct {
	app    *App
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "eval":
		return c.eval(args)
	case "raycast":
		return c.raycast(ctx, args)
	case "inside":
		return c.inside(ctx, args)
	case "edge":
		return c.edge(args)
	case "distances":
		return c.distances(args)
	case "mesh":
		return c.mesh(args)
	case "validate":
		return c.validate(args)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// parse parses subcommand flags, marking bad values as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func (c *cli) write(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (c *cli) eval(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: eval <script|->", errUsage)
	}
	var src []byte
	var err error
	if args[0] == "-" {
		src, err = io.ReadAll(c.stdin)
	} else {
		src, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}
	res := c.app.Evaluate(string(src))
	if err := c.write(res); err != nil {
		return err
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("script failed: %s", res.Errors[0].Message)
	}
	return nil
}

func (c *cli) raycast(ctx context.Context, args []string) error {
	fs := c.flags("raycast")
	shape := fs.String("shape", "", "shape description file (YAML or JSON)")
	var rays rayList
	fs.Var(&rays, "ray", "ray as ox,oy,oz:dx,dy,dz (repeatable)")
	if err := parse(fs, args); err != nil {
		return err
	}
	d, err := loadShape(*shape)
	if err != nil {
		return err
	}
	res, err := c.app.Raycast(ctx, d, rays)
	if err != nil {
		return err
	}
	return c.write(res)
}

func (c *cli) inside(ctx context.Context, args []string) error {
	fs := c.flags("inside")
	shape := fs.String("shape", "", "shape description file (YAML or JSON)")
	var pts vecList
	fs.Var(&pts, "p", "query point x,y[,z] (repeatable)")
	if err := parse(fs, args); err != nil {
		return err
	}
	d, err := loadShape(*shape)
	if err != nil {
		return err
	}
	res, err := c.app.Inside(ctx, d, pts)
	if err != nil {
		return err
	}
	return c.write(res)
}

func (c *cli) edge(args []string) error {
	fs := c.flags("edge")
	shape := fs.String("shape", "", "shape description file (YAML or JSON)")
	var pts vecList
	fs.Var(&pts, "p", "query point x,y[,z] (repeatable)")
	if err := parse(fs, args); err != nil {
		return err
	}
	d, err := loadShape(*shape)
	if err != nil {
		return err
	}
	res, err := c.app.Edge(d, pts)
	if err != nil {
		return err
	}
	return c.write(res)
}

func (c *cli) distances(args []string) error {
	fs := c.flags("distances")
	var ref vecList
	var pts vecList
	fs.Var(&ref, "ref", "reference point x,y[,z]")
	fs.Var(&pts, "p", "point x,y[,z] (repeatable)")
	sort := fs.Int("sort", 1, "1 ascending, -1 descending, 0 input order")
	if err := parse(fs, args); err != nil {
		return err
	}
	if len(ref) != 1 {
		return fmt.Errorf("%w: distances needs exactly one -ref", errUsage)
	}
	return c.write(c.app.Distances(ref[0], pts, query.SortModeOf(*sort)))
}

func (c *cli) mesh(args []string) error {
	fs := c.flags("mesh")
	shape := fs.String("shape", "", "shape description file (YAML or JSON)")
	merged := fs.Bool("merged", false, "union all spheres into one mesh")
	if err := parse(fs, args); err != nil {
		return err
	}
	d, err := loadShape(*shape)
	if err != nil {
		return err
	}
	res, err := c.app.Mesh(d, *merged)
	if err != nil {
		return err
	}
	return c.write(res)
}

func (c *cli) validate(args []string) error {
	fs := c.flags("validate")
	shape := fs.String("shape", "", "shape description file (YAML or JSON)")
	if err := parse(fs, args); err != nil {
		return err
	}
	d, err := loadShape(*shape)
	if err != nil {
		return err
	}
	warnings := []WarningData{}
	for _, w := range descriptor.Validate(d) {
		warnings = append(warnings, WarningData{Code: w.Code, Path: w.Path, Message: w.Message})
	}
	return c.write(struct {
		Kind     string        `json:"kind"`
		Warnings []WarningData `json:"warnings"`
	}{Kind: d.Kind().String(), Warnings: warnings})
}

func loadShape(path string) (*descriptor.Descriptor, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: -shape is required", errUsage)
	}
	return descriptor.LoadFile(path)
}

// ---------------------------------------------------------------------------
// Flag values
// ---------------------------------------------------------------------------

// parseVec reads "x,y" or "x,y,z".
func parseVec(s string) (geom.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return geom.Vec{}, fmt.Errorf("vector %q: want x,y or x,y,z", s)
	}
	var c [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Vec{}, fmt.Errorf("vector %q: %w", s, err)
		}
		c[i] = f
	}
	return geom.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// vecList is a repeatable vector flag.
type vecList []geom.Vec

func (l *vecList) String() string { return fmt.Sprint([]geom.Vec(*l)) }

func (l *vecList) Set(s string) error {
	v, err := parseVec(s)
	if err != nil {
		return err
	}
	*l = append(*l, v)
	return nil
}

// rayList is a repeatable origin:direction flag.
type rayList []query.Ray

func (l *rayList) String() string { return fmt.Sprint([]query.Ray(*l)) }

func (l *rayList) Set(s string) error {
	o, d, ok := strings.Cut(s, ":")
	if !ok {
		return fmt.Errorf("ray %q: want ox,oy,oz:dx,dy,dz", s)
	}
	origin, err := parseVec(o)
	if err != nil {
		return err
	}
	dir, err := parseVec(d)
	if err != nil {
		return err
	}
	*l = append(*l, query.Ray{Origin: origin, Dir: dir})
	return nil
}
