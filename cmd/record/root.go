package record

import (
	"github.com/ValentinKolb/dGrid/cmd/util"
	"github.com/spf13/cobra"
)

var (
	// RecordCommands represents the record command group
	RecordCommands = &cobra.Command{
		Use:   "record",
		Short: "Encode and decode compact records",
		Long: `Encode and decode compact records. Encoding replicates the schema of the
record to all members first, decoding fetches unknown schemas from the cluster.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return util.BindCommandFlags(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			util.PrintTimings()
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the record command
	util.SetupRPCClientFlags(RecordCommands)

	// Add subcommands
	RecordCommands.AddCommand(encodeCmd)
	RecordCommands.AddCommand(decodeCmd)

	// Add flags specific to encode
	encodeCmd.Flags().StringVar(&encodeType, "type", "", "Type name of the schema to use if the file defines more than one")
}
