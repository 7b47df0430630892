package cmd

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/cmd/util"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage/sqlite"
)

const (
	versionFlag          = "version"
	timeoutFlag          = "timeout"
	verboseMigrationFlag = "verbose"
)

// NewMigrateCommand returns the command to run database schema
// migrations needed for the circlevis server.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database schema migrations needed for the circlevis server",
		Long:  `The migrate command is used to migrate the database schema needed for circlevis.`,
		RunE:  runMigration,
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, args []string) {
			flags := cmd.Flags()

			util.MustBindPFlag(datastoreEngineFlag, flags.Lookup(datastoreEngineFlag))
			util.MustBindPFlag(datastoreURIFlag, flags.Lookup(datastoreURIFlag))
			util.MustBindPFlag(versionFlag, flags.Lookup(versionFlag))
			util.MustBindPFlag(timeoutFlag, flags.Lookup(timeoutFlag))
			util.MustBindPFlag(verboseMigrationFlag, flags.Lookup(verboseMigrationFlag))
		},
	}

	flags := cmd.Flags()

	flags.String(datastoreEngineFlag, "", "(required) the datastore engine that will be used for persistence")
	flags.String(datastoreURIFlag, "", "(required) the connection uri of the database to run the migrations against (e.g. 'file:circlevis.db')")
	flags.Uint(versionFlag, 0, "the version to migrate to (if omitted the latest schema will be used)")
	flags.Duration(timeoutFlag, 1*time.Minute, "a timeout after which the migration process will terminate")
	flags.Bool(verboseMigrationFlag, false, "enable verbose migration logs (default false)")

	// NOTE: if you add a new flag here, add the binding in PreRun

	return cmd
}

func runMigration(_ *cobra.Command, _ []string) error {
	engine := viper.GetString(datastoreEngineFlag)

	switch engine {
	case "memory":
		log.Println("no migrations to run for `memory` datastore")
		return nil
	case "sqlite":
	default:
		log.Printf("unknown datastore engine type: %s", engine)
		return nil
	}

	timeout := viper.GetDuration(timeoutFlag)
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return sqlite.RunMigrations(ctx, sqlite.MigrationConfig{
		URI:           viper.GetString(datastoreURIFlag),
		TargetVersion: viper.GetUint(versionFlag),
		Verbose:       viper.GetBool(verboseMigrationFlag),
	})
}
