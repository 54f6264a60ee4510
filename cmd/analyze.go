package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agridash/internal/analysis"
	"github.com/KaramelBytes/agridash/internal/utils"
)

var (
	anaOutputPath string
	anaFormat     string
	anaLang       string
	anaTarget     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <selection>",
	Short: "Run one analysis and print it as Markdown or JSON",
	Long: `Run one analysis over the loaded dataset. Selections:
  overview, climate, agriculture-structure, correlation-regression,
  time-series, ml-models`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := analysis.ParseSelection(args[0])
		if err != nil {
			return err
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opt := c.AnalysisOptions()
		if anaLang != "" {
			opt.Locale = strings.ToLower(anaLang)
		}
		if anaTarget != "" {
			opt.Target = anaTarget
		}

		ds, err := loadDataset(c)
		if err != nil {
			return err
		}
		res, err := analysis.Run(sel, ds, opt)
		if err != nil {
			return err
		}

		var out []byte
		switch strings.ToLower(anaFormat) {
		case "", "md", "markdown":
			out = []byte(res.Markdown())
		case "json":
			out, err = utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			out = append(out, '\n')
		default:
			return fmt.Errorf("unsupported --format: %s (use md or json)", anaFormat)
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", anaOutputPath)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the report to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "md", "output format: md|json")
	analyzeCmd.Flags().StringVar(&anaLang, "lang", "", "label language: ko|en (overrides locale)")
	analyzeCmd.Flags().StringVar(&anaTarget, "target", "", "target column for regression and models (overrides target)")
}
