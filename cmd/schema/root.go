package schema

import (
	"github.com/ValentinKolb/dGrid/cmd/util"
	"github.com/spf13/cobra"
)

var (
	// SchemaCommands represents the schema command group
	SchemaCommands = &cobra.Command{
		Use:               "schema",
		Short:             "Perform schema operations",
		PersistentPreRunE: setupSchemaCommands,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			util.PrintTimings()
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the schema command
	util.SetupRPCClientFlags(SchemaCommands)

	// Add subcommands
	SchemaCommands.AddCommand(idCmd)
	SchemaCommands.AddCommand(putCmd)
	SchemaCommands.AddCommand(fetchCmd)
	SchemaCommands.AddCommand(membersCmd)
}

// setupSchemaCommands binds the flags, the connection is made by the commands that need it
func setupSchemaCommands(cmd *cobra.Command, _ []string) error {
	return util.BindCommandFlags(cmd)
}
