package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/dustin/go-humanize"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/dnakit/internal/config"
	"github.com/Faultbox/dnakit/internal/logger"
	"github.com/Faultbox/dnakit/pkg/dna"
	"github.com/Faultbox/dnakit/pkg/encoding"
	dmath "github.com/Faultbox/dnakit/pkg/math"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func cmdCreate(args []string) error {
	fs := newFlagSet("create")
	name := fs.String("name", "demo rig", "Rig name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: dnatool create [-name N] <out.dna>")
	}

	t, err := newTarget(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := buildDemoRig(t.writer, *name); err != nil {
		t.abort()
		return err
	}
	if err := t.commit(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Created: %s\n", fs.Arg(0))
	return nil
}

// buildDemoRig stages a two-mesh rig with a short joint chain.
func buildDemoRig(w *dna.Writer, name string) error {
	if err := w.SetName(name); err != nil {
		return err
	}
	if err := w.SetLODCount(2); err != nil {
		return err
	}
	for i, joint := range []string{"root", "spine", "neck", "head"} {
		if err := w.SetJointName(i, joint); err != nil {
			return err
		}
	}

	meshes := []struct {
		name      string
		positions [][3]float32
		coords    []dna.TextureCoordinate
	}{
		{
			name:      "head_lod0_mesh",
			positions: [][3]float32{{-1, 0, 0}, {1, 0, 0}, {0, 2, 0}, {0, 1, 1}},
			coords:    []dna.TextureCoordinate{{U: 0, V: 0}, {U: 1, V: 0}, {U: 0.5, V: 1}, {U: 0.5, V: 0.5}},
		},
		{
			name:      "teeth_lod0_mesh",
			positions: [][3]float32{{-0.2, 0.5, 0.8}, {0.2, 0.5, 0.8}, {0, 0.4, 0.9}},
			coords:    []dna.TextureCoordinate{{U: 0, V: 0}, {U: 1, V: 0}, {U: 0.5, V: 1}},
		},
	}
	for i, m := range meshes {
		if err := w.SetMeshName(i, m.name); err != nil {
			return err
		}
		if err := w.SetVertexPositions(i, m.positions); err != nil {
			return err
		}
		if err := w.SetVertexTextureCoordinates(i, m.coords); err != nil {
			return err
		}
	}
	return nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: dnatool info <file.dna>")
	}
	path := args[0]

	r, err := open(path)
	if err != nil {
		return err
	}
	doc, err := r.Document()
	if err != nil {
		return err
	}

	var size uint64
	if st, err := os.Stat(path); err == nil {
		size = uint64(st.Size())
	}

	fmt.Fprintf(stdout, "File:     %s\n", path)
	fmt.Fprintf(stdout, "Size:     %s\n", humanize.Bytes(size))
	fmt.Fprintf(stdout, "Version:  %s\n", r.Version())
	fmt.Fprintf(stdout, "Layer:    %s\n", r.Layer())
	fmt.Fprintf(stdout, "Name:     %s\n", encoding.DisplayName(doc.Name))
	fmt.Fprintf(stdout, "LODs:     %d\n", doc.LODCount)
	fmt.Fprintf(stdout, "Joints:   %d\n", len(doc.Joints))
	fmt.Fprintf(stdout, "Meshes:   %d\n", len(doc.Meshes))
	fmt.Fprintf(stdout, "Vertices: %s\n", humanize.Comma(int64(doc.TotalVertexCount())))

	var bounds dmath.Bounds
	for _, m := range doc.Meshes {
		bounds = bounds.Union(dmath.BoundsOf(m.VertexPositions))
	}
	if !bounds.Empty() {
		fmt.Fprintf(stdout, "Bounds:   %s .. %s\n", formatVec(bounds.Min), formatVec(bounds.Max))
		fmt.Fprintf(stdout, "Extent:   %s\n", formatVec(bounds.Size()))
		fmt.Fprintf(stdout, "Center:   %s\n", formatVec(bounds.Center()))
	}
	return nil
}

func cmdJoints(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: dnatool joints <file.dna>")
	}
	r, err := open(args[0])
	if err != nil {
		return err
	}

	count, err := r.JointCount()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		name, err := r.JointName(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%4d  %s\n", i, encoding.DisplayName(name))
	}
	return nil
}

func cmdMeshes(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: dnatool meshes <file.dna>")
	}
	r, err := open(args[0])
	if err != nil {
		return err
	}

	count, err := r.MeshCount()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		name, err := r.MeshName(i)
		if err != nil {
			return err
		}
		verts, err := r.VertexPositionCount(i)
		if err != nil {
			return err
		}
		coords, err := r.VertexTextureCoordinateCount(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%4d  %-32s %8s vertices %8s texcoords\n",
			i, encoding.DisplayName(name), humanize.Comma(int64(verts)), humanize.Comma(int64(coords)))
	}
	return nil
}

// resolveMesh accepts a mesh name or a numeric index.
func resolveMesh(r *dna.Reader, ref string) (int, error) {
	if i, err := r.MeshIndex(ref); err == nil {
		return i, nil
	}
	i, err := strconv.Atoi(ref)
	if err != nil {
		return -1, fmt.Errorf("%w: no mesh named %q", dna.ErrIndex, ref)
	}
	if _, err := r.MeshName(i); err != nil {
		return -1, err
	}
	return i, nil
}

func cmdVertices(args []string) error {
	fs := newFlagSet("vertices")
	limit := fs.Int("n", 0, "Limit output to N vertices (0 = all)")
	columns := fs.Bool("columns", false, "Print one line per axis")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: dnatool vertices [-n N] [-columns] <file.dna> <mesh>")
	}

	r, err := open(fs.Arg(0))
	if err != nil {
		return err
	}
	mesh, err := resolveMesh(r, fs.Arg(1))
	if err != nil {
		return err
	}

	if *columns {
		return printColumns(r, mesh, *limit)
	}

	count, err := r.VertexPositionCount(mesh)
	if err != nil {
		return err
	}
	coords, err := r.VertexTextureCoordinateCount(mesh)
	if err != nil {
		return err
	}
	if *limit > 0 && *limit < count {
		count = *limit
	}

	for i := 0; i < count; i++ {
		p, err := r.VertexPosition(mesh, i)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%6d  %s", i, formatVec(dmath.FromArray(p)))
		if i < coords {
			tc, err := r.VertexTextureCoordinate(mesh, i)
			if err != nil {
				return err
			}
			line += fmt.Sprintf("  uv (%.4f, %.4f)", tc.U, tc.V)
		}
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func printColumns(r *dna.Reader, mesh, limit int) error {
	columns := []struct {
		label string
		get   func(int) ([]float32, error)
	}{
		{"x", r.VertexPositionXs},
		{"y", r.VertexPositionYs},
		{"z", r.VertexPositionZs},
		{"u", r.VertexTextureCoordinateUs},
		{"v", r.VertexTextureCoordinateVs},
	}
	for _, c := range columns {
		values, err := c.get(mesh)
		if err != nil {
			return err
		}
		if limit > 0 && limit < len(values) {
			values = values[:limit]
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		}
		fmt.Fprintf(stdout, "%s: [%s]\n", c.label, strings.Join(parts, ", "))
	}
	return nil
}

func cmdDump(args []string) error {
	fs := newFlagSet("dump")
	vertices := fs.Bool("vertices", false, "Include vertex data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: dnatool dump [-vertices] <file.dna>")
	}

	r, err := open(fs.Arg(0))
	if err != nil {
		return err
	}
	s, err := summarize(r, *vertices)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// validateFile reads path in full and reports the problems it finds.
// A file that cannot be read is returned as an error instead. A non-nil
// constraint is checked against the file version.
func validateFile(path string, constraint *semver.Constraints) ([]string, *dna.Document, error) {
	r, err := openLayer(path, dna.LayerAll)
	if err != nil {
		return nil, nil, err
	}
	doc, err := r.Document()
	if err != nil {
		return nil, nil, err
	}

	var problems []string
	if constraint != nil {
		v := r.Version()
		if !constraint.Check(semver.New(uint64(v.Major), uint64(v.Minor), 0, "", "")) {
			problems = append(problems, fmt.Sprintf("version %s does not satisfy %s", v, constraint))
		}
	}
	if err := doc.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	for _, m := range doc.Meshes {
		bad := 0
		for _, p := range m.VertexPositions {
			if !dmath.FromArray(p).IsFinite() {
				bad++
			}
		}
		if bad > 0 {
			problems = append(problems, fmt.Sprintf("mesh %q has %d non-finite vertex positions", m.Name, bad))
		}
	}
	return problems, doc, nil
}

func cmdValidate(args []string) error {
	fs := newFlagSet("validate")
	version := fs.String("version", "", "Required file version range, e.g. \">=1.0, <2\"")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: dnatool validate [-version RANGE] <file.dna>...")
	}

	var constraint *semver.Constraints
	if *version != "" {
		c, err := semver.NewConstraint(*version)
		if err != nil {
			return fmt.Errorf("invalid -version: %w", err)
		}
		constraint = c
	}

	failed := 0
	for _, path := range fs.Args() {
		problems, doc, err := validateFile(path, constraint)
		if err != nil {
			fmt.Fprintf(stdout, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		if len(problems) > 0 {
			fmt.Fprintf(stdout, "FAIL %s\n", path)
			for _, p := range problems {
				fmt.Fprintf(stdout, "  - %s\n", p)
			}
			failed++
			continue
		}
		fmt.Fprintf(stdout, "OK   %s (%d joints, %d meshes, %s vertices)\n",
			path, len(doc.Joints), len(doc.Meshes), humanize.Comma(int64(doc.TotalVertexCount())))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, fs.NArg())
	}
	return nil
}

func cmdDetect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: dnatool detect <file>...")
	}
	dna.RegisterFileType()

	for _, path := range args {
		kind, err := filetype.MatchFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if kind == types.Unknown {
			fmt.Fprintf(stdout, "%s: unknown\n", path)
			continue
		}
		logger.Debug("detected file type", zap.String("path", path), zap.String("mime", kind.MIME.Value))
		fmt.Fprintf(stdout, "%s: %s (%s)\n", path, kind.Extension, kind.MIME.Value)
	}
	return nil
}

func cmdConfig(args []string) error {
	fs := newFlagSet("config")
	save := fs.Bool("save", false, "Save to the user config directory")
	output := fs.String("o", "", "Save to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *output != "":
		if err := cfg.SaveTo(*output); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(stdout, "Saved: %s\n", *output)
	case *save:
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(stdout, "Saved: %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	default:
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	return nil
}

func formatVec(v dmath.Vec3) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}
