package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/rxncenter/internal/domain/molecule"
	"github.com/turtacn/rxncenter/internal/infrastructure/storage/npy"
	"github.com/turtacn/rxncenter/internal/intelligence/reaction_center"
	"github.com/turtacn/rxncenter/pkg/errors"
)

type inspectOptions struct {
	MaxAtoms int
	Edits    string
	NPY      string
}

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect [REACTION]",
		Short: "Show atoms, bonds and pair features of one reaction, or describe an exported .npy file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.NPY != "" {
				if len(args) > 0 {
					return errors.InvalidParam("--npy takes no REACTION argument")
				}
				return runInspectNPY(cmd, opts.NPY)
			}
			if len(args) != 1 {
				return errors.InvalidParam("REACTION argument is required")
			}
			return runInspect(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.MaxAtoms, "max-atoms", 0, "pad to this atom count (default: the reaction's atom count)")
	f.StringVar(&opts.Edits, "edits", "", "edit annotation (\"x-y;x-y\") to label")
	f.StringVar(&opts.NPY, "npy", "", "describe an exported .npy file instead")
	return cmd
}

type atomRow struct {
	Index     int    `json:"index"`
	MapNum    int    `json:"map_num"`
	Symbol    string `json:"symbol"`
	Aromatic  bool   `json:"aromatic"`
	Component int    `json:"component"`
}

type bondRow struct {
	A          int       `json:"a"`
	B          int       `json:"b"`
	Type       string    `json:"type"`
	Conjugated bool      `json:"conjugated"`
	InRing     bool      `json:"in_ring"`
	Label      *int32    `json:"label,omitempty"`
	Features   []float32 `json:"features"`
}

type inspectReport struct {
	Reaction   string    `json:"reaction"`
	NumAtoms   int       `json:"num_atoms"`
	MaxAtoms   int       `json:"max_atoms"`
	Components int       `json:"components"`
	Atoms      []atomRow `json:"atoms"`
	Bonds      []bondRow `json:"bonds"`
	Edits      string    `json:"edits,omitempty"`
	Positives  []int     `json:"positives,omitempty"`
}

func runInspect(cmd *cobra.Command, reaction string, opts *inspectOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	var metrics reaction_center.Metrics
	if cliCtx.Metrics != nil {
		metrics = cliCtx.Metrics
	}

	featurizer, err := reaction_center.NewFeaturizer(nil, reaction_center.FeaturizerConfig{}, metrics, cliCtx.Logger.Named("inspect"))
	if err != nil {
		return err
	}
	mol, err := molecule.ParseSMILES(reaction)
	if err != nil {
		return err
	}
	maxAtoms := opts.MaxAtoms
	if maxAtoms == 0 {
		maxAtoms = mol.NumAtoms()
	}

	features, err := featurizer.BinaryFeatures(reaction, maxAtoms)
	if err != nil {
		return err
	}
	components, err := reaction_center.BuildComponentIndex(nil, reaction)
	if err != nil {
		return err
	}

	report := &inspectReport{
		Reaction:   reaction,
		NumAtoms:   mol.NumAtoms(),
		MaxAtoms:   maxAtoms,
		Components: components.Count,
	}

	var labels *reaction_center.LabelMatrix
	if opts.Edits != "" {
		lm, sparse, err := featurizer.BondLabels(reaction, opts.Edits, maxAtoms)
		if err != nil {
			return err
		}
		labels = lm
		report.Edits = opts.Edits
		report.Positives = sparse
	}

	for _, a := range mol.Atoms() {
		comp, _ := components.Component(a.MapNum - 1)
		report.Atoms = append(report.Atoms, atomRow{
			Index:     a.Index,
			MapNum:    a.MapNum,
			Symbol:    a.Symbol,
			Aromatic:  a.Aromatic,
			Component: comp,
		})
	}
	for _, b := range mol.Bonds() {
		i, j := mol.Atom(b.Begin).MapNum-1, mol.Atom(b.End).MapNum-1
		row := bondRow{
			A:          i + 1,
			B:          j + 1,
			Type:       b.Type.String(),
			Conjugated: b.Conjugated,
			InRing:     b.InRing,
			Features:   append([]float32(nil), features.At(i, j)...),
		}
		if labels != nil {
			l := labels.At(i, j)
			row.Label = &l
		}
		report.Bonds = append(report.Bonds, row)
	}

	return PrintResult(cmd, report)
}

func (r *inspectReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "reaction:   %s\n", r.Reaction)
	fmt.Fprintf(&sb, "atoms:      %d (padded to %d)\n", r.NumAtoms, r.MaxAtoms)
	fmt.Fprintf(&sb, "components: %d\n", r.Components)
	for _, a := range r.Atoms {
		arom := ""
		if a.Aromatic {
			arom = " aromatic"
		}
		fmt.Fprintf(&sb, "  atom %d: %s map=%d component=%d%s\n", a.Index, a.Symbol, a.MapNum, a.Component, arom)
	}
	for _, b := range r.Bonds {
		fmt.Fprintf(&sb, "  bond %d-%d: %s %s\n", b.A, b.B, b.Type, formatFeatures(b.Features))
	}
	if r.Edits != "" {
		fmt.Fprintf(&sb, "edits:      %s -> positives %v\n", r.Edits, r.Positives)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (r *inspectReport) TableHeaders() []string {
	return []string{"A", "B", "TYPE", "CONJ", "RING", "LABEL", "FEATURES"}
}

func (r *inspectReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Bonds))
	for _, b := range r.Bonds {
		label := "-"
		if b.Label != nil {
			label = strconv.Itoa(int(*b.Label))
		}
		rows = append(rows, []string{
			strconv.Itoa(b.A),
			strconv.Itoa(b.B),
			b.Type,
			strconv.FormatBool(b.Conjugated),
			strconv.FormatBool(b.InRing),
			label,
			formatFeatures(b.Features),
		})
	}
	return rows
}

func formatFeatures(v []float32) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// ─────────────────────────────────────────────────────────────────────────────
// .npy inspection
// ─────────────────────────────────────────────────────────────────────────────

type npyReport struct {
	Path    string `json:"path"`
	DType   string `json:"dtype"`
	Count   int    `json:"count"`
	NonZero int    `json:"non_zero"`
	// Shape is the logical shape from a sibling manifest.json, when present.
	Shape []int `json:"shape,omitempty"`
}

func (r *npyReport) String() string {
	s := fmt.Sprintf("%s: dtype=%s count=%d non_zero=%d", r.Path, r.DType, r.Count, r.NonZero)
	if len(r.Shape) > 0 {
		s += fmt.Sprintf(" shape=%v", r.Shape)
	}
	return s
}

func runInspectNPY(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeNotFound, "open npy file").WithDetailf("path=%s", path)
	}
	defer f.Close()

	report := &npyReport{Path: path}
	switch {
	case strings.HasSuffix(path, npy.LabelsFile):
		var data []int32
		if err := npy.Decode(f, &data); err != nil {
			return err
		}
		report.DType, report.Count = "int32", len(data)
		for _, v := range data {
			if v != 0 {
				report.NonZero++
			}
		}
	default:
		var data []float32
		if err := npy.Decode(f, &data); err != nil {
			return err
		}
		report.DType, report.Count = "float32", len(data)
		for _, v := range data {
			if v != 0 {
				report.NonZero++
			}
		}
	}

	if raw, err := os.ReadFile(filepath.Join(filepath.Dir(path), npy.ManifestFile)); err == nil {
		var m npy.Manifest
		if json.Unmarshal(raw, &m) == nil {
			for _, a := range m.Arrays {
				if a.File == filepath.Base(path) {
					report.Shape = a.Shape
				}
			}
		}
	}
	return PrintResult(cmd, report)
}

//Personal.AI order the ending
