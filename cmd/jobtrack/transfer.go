package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/jobtrack/internal/tracker"
)

// readCSVFile reads path, refusing files larger than limit bytes.
func readCSVFile(path string, limit int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(limit)+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > limit {
		return "", fmt.Errorf("%s exceeds the %d byte import limit (import.max_file_size)", path, limit)
	}
	return string(data), nil
}

func importFile(st *tracker.State, kind tracker.Kind, path string, limit int) (tracker.ImportResult, error) {
	text, err := readCSVFile(path, limit)
	if err != nil {
		return tracker.ImportResult{}, err
	}
	res, err := st.Import(kind, text)
	if err != nil {
		var ie *tracker.ImportError
		if errors.As(err, &ie) {
			return tracker.ImportResult{}, fmt.Errorf("%s: %w", path, err)
		}
		return tracker.ImportResult{}, err
	}
	return res, nil
}

// exportTargets resolves an export or sample target: one kind, or "all".
func exportTargets(target string) ([]tracker.Kind, error) {
	if strings.EqualFold(strings.TrimSpace(target), "all") {
		return tracker.Kinds, nil
	}
	k, err := tracker.ParseKind(target)
	if err != nil {
		return nil, err
	}
	return []tracker.Kind{k}, nil
}

func exportFiles(st *tracker.State, kinds []tracker.Kind) ([]tracker.File, error) {
	files := make([]tracker.File, 0, len(kinds))
	for _, k := range kinds {
		f, err := st.Export(k)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func sampleFiles(kinds []tracker.Kind) ([]tracker.File, error) {
	files := make([]tracker.File, 0, len(kinds))
	for _, k := range kinds {
		f, err := tracker.Sample(k)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// emit writes files into dir, or a single file to w when dir is "-".
func emit(ctx context.Context, w io.Writer, dir string, files []tracker.File) error {
	if dir == "-" {
		if len(files) != 1 {
			return fmt.Errorf("can only write one file to stdout, got %d", len(files))
		}
		_, err := io.WriteString(w, files[0].Content+"\n")
		return err
	}

	paths, err := tracker.WriteFiles(ctx, dir, files)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printSuccess("Wrote %s", p)
	}
	return nil
}

var importCmd = &cobra.Command{
	Use:   "import <kind> <file.csv>",
	Short: "Merge a CSV file into a collection",
	Long: `Merge a CSV file into companies, applications or references.

Rows whose id matches an existing record update only the columns they carry;
other rows are added. Any malformed or invalid row rejects the whole file.
Use "jobtrack sample <kind>" for an example of the expected columns.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := tracker.ParseKind(args[0])
		if err != nil {
			return err
		}
		return withApp(func(a *app) error {
			printStep("Importing %s from %s", kind, args[1])
			res, err := importFile(a.state, kind, args[1], cfg.Import.MaxFileSize)
			if err != nil {
				return err
			}
			printSuccess("Imported %d %s (%d new, %d updated)", res.Applied, kind, res.Created, res.Updated)
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <kind|all>",
	Short: "Export collections as CSV files",
	Long: `Export one collection, or all three, as CSV.

Each collection is written to <dir>/<kind>.csv. Pass --dir - to print a
single collection to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds, err := exportTargets(args[0])
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		return withApp(func(a *app) error {
			files, err := exportFiles(a.state, kinds)
			if err != nil {
				return err
			}
			return emit(cmd.Context(), cmd.OutOrStdout(), dir, files)
		})
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample <kind|all>",
	Short: "Write example CSV files showing the import columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds, err := exportTargets(args[0])
		if err != nil {
			return err
		}
		files, err := sampleFiles(kinds)
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		return emit(cmd.Context(), cmd.OutOrStdout(), dir, files)
	},
}

func init() {
	exportCmd.Flags().String("dir", ".", `output directory, or "-" for stdout`)
	sampleCmd.Flags().String("dir", ".", `output directory, or "-" for stdout`)
}
