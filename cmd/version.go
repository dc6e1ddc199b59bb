package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

func init() {
	stowkvCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of stowkv",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(version)
			},
		})
}
