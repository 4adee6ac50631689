package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of stackval",
		Run: func(cmd *cobra.Command, args []string) {
			// The version template in root.go handles --version; an
			// explicit command is still standard.
			fmt.Printf("stackval version %s\n", rootCmd.Version)
		},
	}
}
