// Command iziml trains a regression model on a CSV file and exports the
// results: metrics table, feature importances, data archive and charts.
//
//	iziml train --data solubility.csv --out dataset.zip --plots plots/
//	iziml train --example --algorithm linear
//	iziml example --rows 200 > example.csv
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/YuminosukeSato/iziml/artifact"
	"github.com/YuminosukeSato/iziml/config"
	"github.com/YuminosukeSato/iziml/dataset"
	"github.com/YuminosukeSato/iziml/pipeline"
	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/YuminosukeSato/iziml/pkg/log"
	"github.com/YuminosukeSato/iziml/report"
	"github.com/spf13/pflag"
)

const usage = `usage: iziml <command> [flags]

commands:
  train     validate a CSV, train a model and export results
  example   write the built-in example dataset as CSV
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	var err error
	switch args[0] {
	case "train":
		err = train(ctx, args[1:], stdout, stderr)
	case "example":
		err = example(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, pipeline.UserMessage(err))
		return 1
	}
	return 0
}

// setupLogging installs the zerolog provider ("json") or the log/slog
// Cloud Logging handler ("cloud").
func setupLogging(format, level string, stderr io.Writer) error {
	switch format {
	case "json":
		lvl, err := log.ToLogLevel(level)
		if err != nil {
			return err
		}
		p := log.NewZerologProvider(stderr, log.Level(lvl))
		p.InstallWarnings()
		log.SetProvider(p)
		return nil
	case "cloud":
		_, err := log.SetupLogger(stderr, level)
		return err
	}
	return errors.NewInvalidConfigError("log-format", "must be json or cloud", format)
}

func train(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("train", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	dataPath := fs.String("data", "", "input CSV file")
	useExample := fs.Bool("example", false, "use the built-in example dataset instead of --data")
	configPath := fs.String("config", "", "YAML/JSON/TOML file with run options")
	envFile := fs.String("env-file", "", "dotenv file with IZIML_ variables")
	delimiter := fs.String("delimiter", ",", "field delimiter of the input file")
	outPath := fs.String("out", "", "write the data archive (zip) to this path")
	plotDir := fs.String("plots", "", "write charts into this directory")
	plotFormat := fs.String("plot-format", string(report.PNG), "chart format: png or svg")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn or error")
	logFormat := fs.String("log-format", "json", "log output: json (zerolog) or cloud (slog, Cloud Logging fields)")
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := setupLogging(*logFormat, *logLevel, stderr); err != nil {
		return err
	}

	if *envFile != "" {
		if err := config.LoadEnvFile(*envFile); err != nil {
			return err
		}
	}
	opts, err := config.Load(*configPath, fs)
	if err != nil {
		return err
	}
	cfg, err := opts.ModelConfig()
	if err != nil {
		return err
	}

	var res *pipeline.Result
	switch {
	case *useExample:
		ds, err := dataset.Example(cfg.Seed, 1144)
		if err != nil {
			return err
		}
		res, err = pipeline.RunDataset(ctx, ds, cfg)
		if err != nil {
			return err
		}
	case *dataPath != "":
		table, err := readTable(*dataPath, *delimiter)
		if err != nil {
			return err
		}
		res, err = pipeline.Run(ctx, table, cfg)
		if err != nil {
			return err
		}
	default:
		return errors.New("either --data or --example is required")
	}

	printResult(stdout, res)

	if *outPath != "" {
		if err := os.WriteFile(*outPath, res.Archive, 0o644); err != nil {
			return errors.Wrapf(err, "write %s", *outPath)
		}
		fmt.Fprintf(stdout, "\narchive: %s (%s)\n", *outPath, strings.Join(artifact.Members, ", "))
	}
	if *plotDir != "" {
		paths, err := report.WriteFiles(*plotDir, res, report.Format(*plotFormat))
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(stdout, "chart: %s\n", p)
		}
	}
	return nil
}

func readTable(path, delimiter string) (*dataset.Table, error) {
	comma, size := utf8.DecodeRuneInString(delimiter)
	if size == 0 || size != len(delimiter) {
		return nil, errors.NewInvalidConfigError("delimiter", "must be a single character", delimiter)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return dataset.ReadCSV(f, dataset.WithComma(comma))
}

func printResult(w io.Writer, res *pipeline.Result) {
	ds := res.Dataset
	fmt.Fprintln(w, "Input Data Summary")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "No. of samples\t%d\n", ds.NumRows())
	fmt.Fprintf(tw, "No. of X variables\t%d\n", ds.NumColumns()-1)
	fmt.Fprintf(tw, "No. of Training samples\t%d\n", res.Split.NumTrain())
	fmt.Fprintf(tw, "No. of Test samples\t%d\n", res.Split.NumTest())
	if rep := ds.Report(); rep.DroppedRows > 0 || len(rep.DroppedColumns) > 0 {
		fmt.Fprintf(tw, "Dropped rows\t%d\n", rep.DroppedRows)
		fmt.Fprintf(tw, "Dropped columns\t%s\n", strings.Join(rep.DroppedColumns, ", "))
	}
	_ = tw.Flush()

	fmt.Fprintln(w, "\nModel Parameters")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range res.Parameters {
		fmt.Fprintf(tw, "%s\t%s\n", p.Name, p.Value)
	}
	_ = tw.Flush()

	fmt.Fprintln(w, "\nModel Performance")
	header, row := res.Evaluation.Table()
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	printRow(tw, header)
	printRow(tw, row)
	_ = tw.Flush()
	fmt.Fprintln(w)
	header, row = res.Evaluation.ErrorTable()
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	printRow(tw, header)
	printRow(tw, row)
	_ = tw.Flush()
	if oob, ok := res.OOBScore(); ok {
		fmt.Fprintf(w, "Out-of-bag R2: %s\n", strconv.FormatFloat(oob, 'f', 3, 64))
	}

	if len(res.Importances) > 0 {
		fmt.Fprintln(w, "\nFeature Importance")
		names := make([]string, 0, len(res.Importances))
		for n := range res.Importances {
			names = append(names, n)
		}
		sort.Slice(names, func(i, j int) bool {
			return res.Importances[names[i]] > res.Importances[names[j]]
		})
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, n := range names {
			fmt.Fprintf(tw, "%s\t%s\n", n, strconv.FormatFloat(res.Importances[n], 'f', 3, 64))
		}
		_ = tw.Flush()
	}
}

func printRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func example(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("example", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	rows := fs.Int("rows", 1144, "number of rows")
	seed := fs.Uint64("seed", 42, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ds, err := dataset.Example(*seed, *rows)
	if err != nil {
		return err
	}
	return dataset.WriteCSV(stdout, ds.Table())
}
