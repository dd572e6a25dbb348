package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func planCmd(g *globals) *cobra.Command {
	var in inputOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the classification and pagination without rendering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := in.open(g)
			if err != nil {
				return err
			}
			defer input.Close()

			plan, err := in.generator(g, input).Plan(cmd.Context(), input.Boards)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(g.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(plan.Summary()); err != nil {
				return fmt.Errorf("encode plan: %w", err)
			}
			return enc.Close()
		},
	}

	in.register(cmd)
	return cmd
}
