package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/rxncenter/internal/application/featurization"
	"github.com/turtacn/rxncenter/internal/config"
	"github.com/turtacn/rxncenter/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/rxncenter/internal/infrastructure/storage/minio"
	"github.com/turtacn/rxncenter/internal/infrastructure/storage/npy"
	"github.com/turtacn/rxncenter/internal/intelligence/reaction_center"
	"github.com/turtacn/rxncenter/pkg/errors"
)

type featurizeOptions struct {
	Input      string
	OutDir     string
	BatchSize  int
	Inference  bool
	Sink       string
	RunID      string
	MetricsOut string
}

// NewFeaturizeCmd creates the featurize command.
func NewFeaturizeCmd() *cobra.Command {
	opts := &featurizeOptions{}

	cmd := &cobra.Command{
		Use:   "featurize",
		Short: "Featurize a reaction file and export NumPy batches",
		Long: "Reads one reaction per line (\"<reaction SMILES> <edits>\", edits as\n" +
			"\"x-y;x-y\" atom-map pairs), featurizes the reactions in batches and writes\n" +
			"features.npy, labels.npy, sparse.json and manifest.json per batch.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeaturize(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Input, "input", "i", "", "reaction file, or - for stdin (required)")
	f.StringVar(&opts.OutDir, "out", "", "export directory for the dir sink (overrides export.dir)")
	f.IntVar(&opts.BatchSize, "batch-size", 0, "reactions per exported batch (overrides featurizer.batch_size)")
	f.BoolVar(&opts.Inference, "inference", false, "featurize without labels; edit fields are optional")
	f.StringVar(&opts.Sink, "sink", "", "export sink: dir|minio (overrides export.sink)")
	f.StringVar(&opts.RunID, "run-id", "", "export prefix (default: random UUID)")
	f.StringVar(&opts.MetricsOut, "metrics-out", "", "write Prometheus text metrics to this file after the run")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runFeaturize(cmd *cobra.Command, opts *featurizeOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if opts.BatchSize < 0 {
		return errors.InvalidParam("--batch-size must be >= 0").WithDetailf("batch_size=%d", opts.BatchSize)
	}
	logger := cliCtx.Logger.Named("featurize")
	cfg := *cliCtx.Config
	if opts.Sink != "" {
		cfg.Export.Sink = strings.ToLower(opts.Sink)
	}
	if opts.OutDir != "" {
		cfg.Export.Dir = opts.OutDir
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "invalid featurize options")
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	items, err := readInput(cmd, opts.Input, !opts.Inference)
	if err != nil {
		return err
	}

	var metrics reaction_center.Metrics
	var runMetrics featurization.RunMetrics
	if cliCtx.Metrics != nil {
		metrics = cliCtx.Metrics
		runMetrics = cliCtx.Metrics
	}

	featurizer, err := reaction_center.NewFeaturizer(nil, reaction_center.FeaturizerConfig{
		MaxAtomsLimit: cfg.Featurizer.MaxAtomsLimit,
	}, metrics, logger)
	if err != nil {
		return err
	}

	sink, err := newSink(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	exporter, err := npy.NewExporter(sink, logger)
	if err != nil {
		return err
	}

	svc, err := featurization.NewService(featurizer, exporter, featurization.Config{
		BatchSize: cfg.Featurizer.BatchSize,
		Sink:      cfg.Export.Sink,
	}, runMetrics, logger)
	if err != nil {
		return err
	}

	res, runErr := svc.Run(ctx, &featurization.Request{
		Items:     items,
		Inference: opts.Inference,
		BatchSize: opts.BatchSize,
		RunID:     opts.RunID,
	})
	if opts.MetricsOut != "" && cliCtx.Collector != nil {
		if err := cliCtx.Collector.WriteTextfile(opts.MetricsOut); err != nil {
			logger.Warn("failed to write metrics file", logging.String("path", opts.MetricsOut), logging.Err(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	PrintSuccess(cmd, fmt.Sprintf("featurized %d reactions into %d batches", res.Reactions, len(res.Chunks)))
	return PrintResult(cmd, featurizeOutput{res})
}

func readInput(cmd *cobra.Command, path string, requireEdits bool) ([]reaction_center.ReactionEdits, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeNotFound, "open input").WithDetailf("path=%s", path)
		}
		defer f.Close()
		r = f
	}
	return featurization.ReadReactions(r, requireEdits)
}

// newSink builds the export sink named by cfg.Export.Sink.
func newSink(ctx context.Context, cfg *config.Config, logger logging.Logger) (npy.Sink, error) {
	switch cfg.Export.Sink {
	case config.SinkMinIO:
		client, err := minio.NewClient(ctx, &minio.Config{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKeyID,
			SecretAccessKey: cfg.MinIO.SecretAccessKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Region:          cfg.MinIO.Region,
			Bucket:          cfg.MinIO.Bucket,
			CreateBucket:    cfg.MinIO.CreateBucket,
		}, logger)
		if err != nil {
			return nil, err
		}
		return minio.NewObjectSink(client, ""), nil
	default:
		return npy.NewDirSink(cfg.Export.Dir), nil
	}
}

// featurizeOutput renders a featurization.Result for the CLI.
type featurizeOutput struct {
	*featurization.Result
}

func (o featurizeOutput) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run:       %s\n", o.RunID)
	fmt.Fprintf(&sb, "kind:      %s\n", o.Kind)
	fmt.Fprintf(&sb, "reactions: %d\n", o.Reactions)
	fmt.Fprintf(&sb, "positives: %d\n", o.Positives)
	fmt.Fprintf(&sb, "batches:   %d\n", len(o.Chunks))
	fmt.Fprintf(&sb, "took:      %s", o.Duration)
	for _, c := range o.Chunks {
		fmt.Fprintf(&sb, "\n  %s", c.Manifest)
	}
	return sb.String()
}

func (o featurizeOutput) TableHeaders() []string {
	return []string{"BATCH", "SIZE", "MAX_ATOMS", "POSITIVES", "BYTES", "MANIFEST"}
}

func (o featurizeOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o.Chunks))
	for _, c := range o.Chunks {
		rows = append(rows, []string{
			strconv.Itoa(c.Index),
			strconv.Itoa(c.Size),
			strconv.Itoa(c.MaxAtoms),
			strconv.Itoa(c.Positives),
			strconv.Itoa(c.Bytes),
			c.Manifest,
		})
	}
	return rows
}

//Personal.AI order the ending
