package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set in build using -ldflags "-X github.com/func/cfn-sagemaker/cmd/cfn-sagemaker.<name>=<value>"
var (
	// Version contains the current version.
	Version = "dev"

	// BuildDate contains a string with the build date.
	BuildDate = "unknown"
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cfn-sagemaker\n")
		fmt.Printf("  Version:     %s\n", Version)
		fmt.Printf("  Built:       %s\n", BuildDate)
		fmt.Printf("  Go version:  %s\n", runtime.Version())
	},
}

func init() {
	Root.AddCommand(versionCommand)
}
