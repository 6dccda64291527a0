package main

import (
	"fmt"
	"os"

	cmd "github.com/func/cfn-sagemaker/cmd/cfn-sagemaker"
)

func main() {
	err := cmd.Root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
