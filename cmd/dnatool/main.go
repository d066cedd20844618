// dnatool is a CLI utility for inspecting and editing DNA rig files.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/dnakit/internal/config"
	"github.com/Faultbox/dnakit/internal/logger"
	"github.com/Faultbox/dnakit/pkg/dna"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	cfg = config.Default()
)

// errDiffer is returned by diff when the files are not equal. It only sets
// the exit status; the differences have already been printed.
var errDiffer = errors.New("files differ")

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	c, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg = c

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	code := run(args[0], args[1:])
	logger.Sync()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(command string, args []string) int {
	var err error
	switch command {
	case "create":
		err = cmdCreate(args)
	case "info":
		err = cmdInfo(args)
	case "joints":
		err = cmdJoints(args)
	case "meshes":
		err = cmdMeshes(args)
	case "vertices", "verts":
		err = cmdVertices(args)
	case "dump":
		err = cmdDump(args)
	case "validate", "check":
		err = cmdValidate(args)
	case "diff":
		err = cmdDiff(args)
	case "copy-positions", "cp":
		err = cmdCopyPositions(args)
	case "detect":
		err = cmdDetect(args)
	case "watch":
		err = cmdWatch(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage()
		return 1
	}

	if errors.Is(err, errDiffer) {
		return 1
	}
	if err != nil {
		logger.Debug("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Fprintln(stderr, `dnatool - DNA rig file utility

Usage:
  dnatool [global options] <command> [options] <args>

Global options:
  -config <path>     Config file (default ./dnakit.yaml)
  -debug             Enable debug logging
  -layer <layer>     Data layer to read: all, joints, descriptor
  -tolerance <f>     Vertex comparison tolerance
  -log-file <path>   Also write logs to a rotating file
  -no-atomic         Write files in place instead of temp+rename

Commands:
  create [-name N] <out.dna>                       Write a small demo rig
  info <file.dna>                                  Show file summary
  joints <file.dna>                                List joint names
  meshes <file.dna>                                List meshes with counts
  vertices [-n N] [-columns] <file.dna> <mesh>     Print vertex data of a mesh
  dump [-vertices] <file.dna>                      Dump the document as YAML
  validate [-version RANGE] <file.dna>...          Check files for problems
  diff <a.dna> <b.dna>                             Compare vertex positions
  copy-positions -mesh M [-target T] [-out P] <src.dna> <dst.dna>
                                                   Copy changed positions
  detect <file>...                                 Detect file types
  watch <file.dna>                                 Re-validate on every change
  config [-save] [-o path]                         Print or save the effective config

Examples:
  dnatool create demo.dna
  dnatool -layer joints info archetype.dna
  dnatool vertices -n 10 head.dna head_lod0_mesh
  dnatool -tolerance 0.01 copy-positions -mesh head_lod0_mesh edited.dna base.dna`)
}

// readerOptions returns the options every command passes to the DNA package.
func readerOptions() []dna.Option {
	return []dna.Option{dna.WithLogger(logger.Named("dna"))}
}

// open reads path with the configured data layer.
func open(path string) (*dna.Reader, error) {
	layer, err := cfg.DataLayer()
	if err != nil {
		return nil, err
	}
	return openLayer(path, layer)
}

func openLayer(path string, layer dna.DataLayer) (*dna.Reader, error) {
	r, st := dna.LoadFile(path, layer, readerOptions()...)
	if !st.OK() {
		return nil, fmt.Errorf("%s: %s: %w", path, st.Code, st.Err)
	}
	return r, nil
}

// target stages edits for path and commits them according to the writer
// config: atomically through a temporary file, or straight into path.
type target struct {
	path   string
	writer *dna.Writer
	stream dna.Stream
}

func newTarget(path string) (*target, error) {
	if cfg.Writer.Atomic {
		return &target{path: path, writer: dna.NewWriter(dna.NewMemoryStream(), readerOptions()...)}, nil
	}
	stream, err := dna.OpenFileStream(path, dna.AccessWrite, dna.OpenBinary)
	if err != nil {
		return nil, err
	}
	return &target{path: path, writer: dna.NewWriter(stream, readerOptions()...), stream: stream}, nil
}

func (t *target) commit() error {
	var st dna.Status
	if t.stream == nil {
		st = dna.SaveFile(t.path, t.writer.Document(), readerOptions()...)
	} else {
		st = t.writer.Write()
	}
	if !st.OK() {
		return fmt.Errorf("%s: %s: %w", t.path, st.Code, st.Err)
	}
	return nil
}

// abort releases the target without writing.
func (t *target) abort() {
	if t.stream != nil {
		t.stream.Close()
	}
}
