package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/build"
)

// NewVersionCommand returns the command to get the circlevis version.
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Return the circlevis version",
		Long:  "Return the circlevis version.",
		RunE:  version,
		Args:  cobra.NoArgs,
	}

	return cmd
}

func version(_ *cobra.Command, _ []string) error {
	log.Printf("circlevis version %s date %s commit id %s", build.Version, build.Date, build.Commit)
	return nil
}
