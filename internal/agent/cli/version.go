package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd выводит версию и дату сборки, переданные через -ldflags.
func NewVersionCmd(buildVersion, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию и дату сборки",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "version=%s\nbuild_date=%s\n", buildVersion, buildDate)
		},
	}
}
