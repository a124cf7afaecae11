package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/aryamurray/roku-svelte-sub001/internal/assets"
	"github.com/aryamurray/roku-svelte-sub001/internal/config"
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
	"github.com/aryamurray/roku-svelte-sub001/internal/parser"
	"github.com/aryamurray/roku-svelte-sub001/pkg/compiler"
)

var (
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// fileReport is the per-file entry of --json output.
type fileReport struct {
	File      string          `json:"file"`
	Component string          `json:"component"`
	Ok        bool            `json:"ok"`
	Errors    []*diag.Error   `json:"errors,omitempty"`
	Warnings  []*diag.Warning `json:"warnings,omitempty"`
	Outputs   []string        `json:"outputs,omitempty"`
}

func newCompileCmd() *cobra.Command {
	var (
		configPath string
		outDir     string
		entry      string
		jsonOut    bool
	)
	cmd := &cobra.Command{
		Use:   "compile [files...]",
		Short: "Compile component sources into a channel tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.OutDir = outDir
			}
			if entry != "" {
				cfg.Entry = entry
			}

			var set assets.Set
			var reports []fileReport
			failed := false
			for _, file := range args {
				src, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				res := compiler.Compile(string(src), file, compiler.Options{
					IsEntry:    file == cfg.Entry,
					RootWidth:  cfg.Canvas.Width,
					RootHeight: cfg.Canvas.Height,
				})
				name := parser.ComponentName(file)
				report := fileReport{
					File:      file,
					Component: name,
					Ok:        res.Ok(),
					Errors:    res.Errors,
					Warnings:  res.Warnings,
				}

				if !jsonOut {
					for _, w := range res.Warnings {
						fmt.Fprint(cmd.ErrOrStderr(), warnStyle.Render(diag.FormatWarning(w))+"\n")
					}
					for _, e := range res.Errors {
						fmt.Fprint(cmd.ErrOrStderr(), errStyle.Render(diag.FormatError(e))+"\n")
					}
				}
				if !res.Ok() {
					failed = true
					reports = append(reports, report)
					continue
				}

				planned := assets.Plan(name, res)
				set.Add(planned...)
				for _, f := range planned {
					report.Outputs = append(report.Outputs, filepath.Join(cfg.OutDir, f.Path))
				}
				reports = append(reports, report)
			}

			if !failed {
				if err := writeFiles(cfg.OutDir, set.All()); err != nil {
					return err
				}
			}

			if jsonOut {
				enc := gojson.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return err
				}
			} else if !failed {
				fmt.Fprintln(cmd.OutOrStdout(),
					okStyle.Render(fmt.Sprintf("compiled %d component(s) to %s", len(args), cfg.OutDir)))
			}

			if failed {
				return errors.New("compilation failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFilename, "project manifest path")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (overrides manifest)")
	cmd.Flags().StringVar(&entry, "entry", "", "entry component compiled as the Scene root")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit machine-readable results on stdout")
	return cmd
}

func writeFiles(outDir string, files []assets.File) error {
	for _, f := range files {
		dst := filepath.Join(outDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, []byte(f.Content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
