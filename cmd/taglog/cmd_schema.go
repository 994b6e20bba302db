package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/taglog/log"
)

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the --log-config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := configSchema()
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)
			if err != nil {
				return fmt.Errorf("write schema: %w", err)
			}

			return nil
		},
	}
}

// configSchema renders the schema of [log.FileConfig] as indented JSON.
func configSchema() ([]byte, error) {
	schema, err := jsonschema.For[log.FileConfig](nil)
	if err != nil {
		return nil, fmt.Errorf("infer schema: %w", err)
	}

	schema.Schema = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "taglog configuration"

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(out, '\n'), nil
}
