package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/dnakit/internal/compare"
	"github.com/Faultbox/dnakit/internal/logger"
	"github.com/Faultbox/dnakit/pkg/dna"
)

func cmdDiff(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: dnatool diff <a.dna> <b.dna>")
	}

	a, err := open(args[0])
	if err != nil {
		return err
	}
	b, err := open(args[1])
	if err != nil {
		return err
	}
	docA, err := a.Document()
	if err != nil {
		return err
	}
	docB, err := b.Document()
	if err != nil {
		return err
	}

	differ := false
	if docA.Name != docB.Name {
		fmt.Fprintf(stdout, "name: %q != %q\n", docA.Name, docB.Name)
		differ = true
	}
	if docA.LODCount != docB.LODCount {
		fmt.Fprintf(stdout, "lod count: %d != %d\n", docA.LODCount, docB.LODCount)
		differ = true
	}
	if len(docA.Joints) != len(docB.Joints) {
		fmt.Fprintf(stdout, "joint count: %d != %d\n", len(docA.Joints), len(docB.Joints))
		differ = true
	} else {
		for i := range docA.Joints {
			if docA.Joints[i].Name != docB.Joints[i].Name {
				fmt.Fprintf(stdout, "joint %d: %q != %q\n", i, docA.Joints[i].Name, docB.Joints[i].Name)
				differ = true
			}
		}
	}

	for _, d := range compare.Meshes(docA, docB, cfg.Compare.Tolerance) {
		switch {
		case d.CountB < 0:
			fmt.Fprintf(stdout, "mesh %q: only in %s\n", d.Name, args[0])
		case d.CountA < 0:
			fmt.Fprintf(stdout, "mesh %q: only in %s\n", d.Name, args[1])
		case d.Equal():
			continue
		default:
			if d.CountA != d.CountB {
				fmt.Fprintf(stdout, "mesh %q: vertex count %d != %d\n", d.Name, d.CountA, d.CountB)
			}
			if len(d.Deltas) > 0 {
				fmt.Fprintf(stdout, "mesh %q: %d vertices moved\n", d.Name, len(d.Deltas))
			}
			for _, v := range d.Deltas {
				fmt.Fprintf(stdout, "  %6d  %v -> %v  (%.6f)\n", v.Index, v.From, v.To, v.Distance)
			}
			if d.UVCountA != d.UVCountB {
				fmt.Fprintf(stdout, "mesh %q: texture coordinate count %d != %d\n", d.Name, d.UVCountA, d.UVCountB)
			}
			if len(d.UVDeltas) > 0 {
				fmt.Fprintf(stdout, "mesh %q: %d texture coordinates moved\n", d.Name, len(d.UVDeltas))
			}
			for _, v := range d.UVDeltas {
				fmt.Fprintf(stdout, "  %6d  (%g, %g) -> (%g, %g)  (%.6f)\n", v.Index, v.From.U, v.From.V, v.To.U, v.To.V, v.Distance)
			}
		}
		differ = true
	}

	if differ {
		return errDiffer
	}
	fmt.Fprintln(stdout, "identical")
	return nil
}

func cmdCopyPositions(args []string) error {
	fs := newFlagSet("copy-positions")
	meshName := fs.String("mesh", "", "Source mesh name")
	targetName := fs.String("target", "", "Target mesh name (default: same as -mesh)")
	out := fs.String("out", "", "Output path (default: overwrite the target file)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 || *meshName == "" {
		return fmt.Errorf("usage: dnatool copy-positions -mesh M [-target T] [-out P] <src.dna> <dst.dna>")
	}
	if *targetName == "" {
		*targetName = *meshName
	}
	srcPath, dstPath := fs.Arg(0), fs.Arg(1)
	if *out == "" {
		*out = dstPath
	}

	// Geometry is needed from both files regardless of the configured layer.
	src, err := openLayer(srcPath, dna.LayerAll)
	if err != nil {
		return err
	}
	dst, err := openLayer(dstPath, dna.LayerAll)
	if err != nil {
		return err
	}

	srcMesh, err := src.MeshIndex(*meshName)
	if err != nil {
		return fmt.Errorf("%s: %w", srcPath, err)
	}
	dstMesh, err := dst.MeshIndex(*targetName)
	if err != nil {
		return fmt.Errorf("%s: %w", dstPath, err)
	}

	srcDoc, err := src.Document()
	if err != nil {
		return err
	}
	dstDoc, err := dst.Document()
	if err != nil {
		return err
	}

	positions, changed, err := compare.CopyPositions(
		srcDoc.Meshes[srcMesh].VertexPositions,
		dstDoc.Meshes[dstMesh].VertexPositions,
		cfg.Compare.Tolerance,
	)
	if err != nil {
		return fmt.Errorf("mesh %q: %w", *targetName, err)
	}
	logger.Debug("copy positions",
		zap.String("source", srcPath),
		zap.String("target", dstPath),
		zap.Int("changed", len(changed)),
		zap.Float32("tolerance", cfg.Compare.Tolerance),
	)

	t, err := newTarget(*out)
	if err != nil {
		return err
	}
	if err := t.writer.SetFrom(dst); err != nil {
		t.abort()
		return err
	}
	if err := t.writer.SetVertexPositions(dstMesh, positions); err != nil {
		t.abort()
		return err
	}
	if err := t.commit(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Copied %d of %d vertex positions into %s\n", len(changed), len(positions), *out)
	return nil
}
