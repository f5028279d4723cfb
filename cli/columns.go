package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/georgepadayatti/pdflayout/config"
	"github.com/georgepadayatti/pdflayout/pdf/layout"
)

// ColumnsOptions contains options for the columns command.
type ColumnsOptions struct {
	Count       int
	ColumnWidth string
	Gap         string
}

func newColumnsCommand() *cobra.Command {
	var opts ColumnsOptions

	cmd := &cobra.Command{
		Use:   "columns <width>",
		Short: "Resolve the column count and width of a multi-column box",
		Example: `  pdflayout columns 451pt --count 3
  pdflayout columns 6in --column-width 2in --gap 0.25in`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, w, err := resolveColumns(args[0], &opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "columns: %d\nwidth: %.2fpt\n", n, w)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 0, "wanted column count, 0 for auto")
	cmd.Flags().StringVar(&opts.ColumnWidth, "column-width", "auto", "minimum column width")
	cmd.Flags().StringVar(&opts.Gap, "gap", "auto", "gap between columns")
	return cmd
}

func resolveColumns(width string, opts *ColumnsOptions) (int, float64, error) {
	w, err := config.ParseLength(width)
	if err != nil {
		return 0, 0, err
	}
	if w.Kind != layout.LengthFixed {
		return 0, 0, fmt.Errorf("%w: width must be an absolute length, got '%s'", config.ErrInvalidLength, width)
	}

	mc := layout.MulticolConfig{ColumnCount: opts.Count}
	if mc.ColumnWidth, err = config.ParseLength(opts.ColumnWidth); err != nil {
		return 0, 0, err
	}
	if mc.ColumnGap, err = config.ParseLength(opts.Gap); err != nil {
		return 0, 0, err
	}
	if err := mc.Validate(); err != nil {
		return 0, 0, err
	}
	return mc.Columns(w.Value)
}
