package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var typesCommand = &cobra.Command{
	Use:   "types",
	Short: "List supported resource types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.sync()

		for _, t := range a.registry.Types() {
			fmt.Println(t)
		}
		return nil
	},
}

func init() {
	Root.AddCommand(typesCommand)
}
