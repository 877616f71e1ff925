package schema

import (
	"fmt"
	"github.com/ValentinKolb/dGrid/cmd/util"
	"github.com/spf13/cobra"
	"strconv"
)

var (
	idCmd = &cobra.Command{
		Use:   "id [file]",
		Short: "Prints the ids of the schemas defined in a file (no connection needed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas, err := util.LoadSchemaDefinitions(args[0])
			if err != nil {
				return err
			}
			for _, schema := range schemas {
				fmt.Printf("%s id=%d\n", schema.TypeName(), schema.ID())
			}
			return nil
		},
	}
	putCmd = &cobra.Command{
		Use:   "put [file]",
		Short: "Replicates the schemas defined in a file to all members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas, err := util.LoadSchemaDefinitions(args[0])
			if err != nil {
				return err
			}

			svc, err := util.NewSchemaService()
			if err != nil {
				return err
			}

			ctx, cancel := util.CommandContext()
			defer cancel()

			for _, schema := range schemas {
				if err := svc.Put(ctx, schema); err != nil {
					return err
				}
				fmt.Printf("put %s id=%d successfully\n", schema.TypeName(), schema.ID())
			}
			return nil
		},
	}
	fetchCmd = &cobra.Command{
		Use:   "fetch [id]",
		Short: "Fetches a schema from the cluster and prints its definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id must be a number: %w", err)
			}

			svc, err := util.NewSchemaService()
			if err != nil {
				return err
			}

			ctx, cancel := util.CommandContext()
			defer cancel()

			schema, err := svc.Get(ctx, id)
			if err != nil {
				return err
			}
			out, err := util.FormatSchema(schema)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	membersCmd = &cobra.Command{
		Use:   "members",
		Short: "Lists the ids of all cluster members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			invoker, err := util.NewSchemaInvoker()
			if err != nil {
				return err
			}

			ctx, cancel := util.CommandContext()
			defer cancel()

			members, err := invoker.Members(ctx)
			if err != nil {
				return err
			}
			for _, member := range members {
				fmt.Println(member)
			}
			return nil
		},
	}
)
