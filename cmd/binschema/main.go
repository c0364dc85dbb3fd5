// Package main provides the CLI entry point for binschema, a tool that
// decodes a binary file against a YAML schema document and prints the
// resulting snapshot.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/binstruct/binstruct/bitio"
	"github.com/binstruct/binstruct/schemaconfig"
)

func main() {
	var pretty bool

	rootCmd := &cobra.Command{
		Use:           "binschema <schema.yaml> <data.bin>",
		Short:         "Decode a binary file against a YAML schema document",
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args[0], args[1], pretty)
		},
	}

	rootCmd.Flags().BoolVar(&pretty, "pretty", true, "indent the printed snapshot")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(schemaPath, dataPath string, pretty bool) error {
	schemaDoc, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("binschema: read schema: %w", err)
	}

	proto, err := schemaconfig.CompileDocument(schemaDoc)
	if err != nil {
		return fmt.Errorf("binschema: compile schema: %w", err)
	}

	data, err := os.Open(dataPath)
	if err != nil {
		return fmt.Errorf("binschema: open data: %w", err)
	}
	defer data.Close()

	f, err := proto.Instantiate(nil, nil)
	if err != nil {
		return fmt.Errorf("binschema: instantiate: %w", err)
	}

	if err := f.Read(bitio.NewReader(data)); err != nil {
		return fmt.Errorf("binschema: decode: %w", err)
	}

	indent := ""
	if pretty {
		indent = "  "
	}

	out, err := json.MarshalIndent(f.Snapshot(), "", indent)
	if err != nil {
		return fmt.Errorf("binschema: marshal snapshot: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
