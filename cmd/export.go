package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agridash/internal/analysis"
	"github.com/KaramelBytes/agridash/internal/render"
	"github.com/KaramelBytes/agridash/internal/utils"
)

var (
	exDir        string
	exLang       string
	exSelections []string
	exNoCharts   bool
	exFormat     string
	exQuiet      bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every analysis as Markdown, chart images and one XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opt := c.AnalysisOptions()
		if exLang != "" {
			opt.Locale = strings.ToLower(exLang)
		}
		format, err := render.ParseFormat(exFormat)
		if err != nil {
			return err
		}
		sels := analysis.Selections()
		if len(exSelections) > 0 {
			sels = nil
			for _, s := range exSelections {
				sel, err := analysis.ParseSelection(s)
				if err != nil {
					return err
				}
				sels = append(sels, sel)
			}
		}

		ds, err := loadDataset(c)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(exDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		out := cmd.OutOrStdout()
		img := c.ImageOptions()

		var results []analysis.Result
		total := len(sels)
		for i, sel := range sels {
			if !exQuiet {
				fmt.Fprintf(out, "[%d/%d] Analyzing %s...\n", i+1, total, sel.Slug())
			}
			res, err := analysis.Run(sel, ds, opt)
			if err != nil {
				return err
			}
			results = append(results, res)
			if err := utils.SafeWriteFile(filepath.Join(exDir, sel.Slug()+".md"), []byte(res.Markdown())); err != nil {
				return err
			}
			if exNoCharts {
				continue
			}
			for _, ch := range res.Charts {
				var buf bytes.Buffer
				if err := render.Chart(&buf, ch, format, img); err != nil {
					fmt.Fprintf(out, "⚠ Skipping chart %s: %v\n", ch.ID, err)
					continue
				}
				name := fmt.Sprintf("%s-%s.%s", sel.Slug(), ch.ID, format)
				if err := utils.SafeWriteFile(filepath.Join(exDir, name), buf.Bytes()); err != nil {
					return err
				}
			}
		}

		wb, err := render.Workbook(ds, results, opt.Locale, img)
		if err != nil {
			return fmt.Errorf("build workbook: %w", err)
		}
		defer wb.Close()
		path := filepath.Join(exDir, "agridash.xlsx")
		if err := wb.SaveAs(path); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		if !exQuiet {
			fmt.Fprintf(out, "✓ Exported %d analyses to %s\n", len(results), exDir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exDir, "dir", "export", "output directory")
	exportCmd.Flags().StringVar(&exLang, "lang", "", "label language: ko|en (overrides locale)")
	exportCmd.Flags().StringSliceVar(&exSelections, "only", nil, "comma-separated selections to export (default all)")
	exportCmd.Flags().BoolVar(&exNoCharts, "no-charts", false, "skip chart images")
	exportCmd.Flags().StringVar(&exFormat, "chart-format", "png", "chart image format: png|svg")
	exportCmd.Flags().BoolVar(&exQuiet, "quiet", false, "suppress progress output")
}
