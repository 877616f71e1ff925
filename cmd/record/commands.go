package record

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dGrid/cmd/util"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var (
	encodeType string

	encodeCmd = &cobra.Command{
		Use:   "encode [schema file] [values]",
		Short: "Encodes a record given as yaml or json object and prints it hex encoded",
		Long: `Encodes a record given as yaml or json object and prints it hex encoded.
Example: dgrid record encode employee.yaml '{age: 31, name: jane}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas, err := util.LoadSchemaDefinitions(args[0])
			if err != nil {
				return err
			}
			schema, err := selectSchema(schemas, encodeType)
			if err != nil {
				return err
			}

			var values map[string]any
			if err := yaml.Unmarshal([]byte(args[1]), &values); err != nil {
				return fmt.Errorf("invalid values: %w", err)
			}
			rec, err := NewRecord(schema, values)
			if err != nil {
				return err
			}

			svc, err := util.NewSchemaService()
			if err != nil {
				return err
			}

			ctx, cancel := util.CommandContext()
			defer cancel()

			data, err := compact.NewStreamSerializer(svc).ToBytes(ctx, rec)
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(data))
			return nil
		},
	}
	decodeCmd = &cobra.Command{
		Use:   "decode [hex]",
		Short: "Decodes a hex encoded record and prints it as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("invalid hex: %w", err)
			}

			svc, err := util.NewSchemaService()
			if err != nil {
				return err
			}

			ctx, cancel := util.CommandContext()
			defer cancel()

			v, err := compact.NewStreamSerializer(svc).FromBytes(ctx, data)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
)

// selectSchema picks the schema named typeName, or the only one if typeName is empty
func selectSchema(schemas []*compact.Schema, typeName string) (*compact.Schema, error) {
	if typeName == "" {
		if len(schemas) != 1 {
			return nil, fmt.Errorf("the file defines %d schemas, select one with --type", len(schemas))
		}
		return schemas[0], nil
	}
	for _, schema := range schemas {
		if schema.TypeName() == typeName {
			return schema, nil
		}
	}
	return nil, fmt.Errorf("no schema with type name %s", typeName)
}
