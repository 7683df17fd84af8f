package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type OutputFormat string

const (
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatTable OutputFormat = "table"
)

func outputFormat() OutputFormat {
	return OutputFormat(viper.GetString("output_format"))
}

// printOutput writes data as JSON or YAML, or the given rows as a table.
func printOutput(w io.Writer, data interface{}, tableHeaders []string, tableRows [][]string) error {
	switch outputFormat() {
	case OutputFormatJSON:
		return printJSON(w, data)
	case OutputFormatYAML:
		return printYAML(w, data)
	case OutputFormatTable, "":
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		header := make(table.Row, 0, len(tableHeaders))
		for _, h := range tableHeaders {
			header = append(header, h)
		}
		tw.AppendHeader(header)
		for _, row := range tableRows {
			r := make(table.Row, 0, len(row))
			for _, cell := range row {
				r = append(r, cell)
			}
			tw.AppendRow(r)
		}
		tw.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat())
	}
}

func printJSON(w io.Writer, data interface{}) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// printYAML goes through JSON first so that json tags, raw JSON values and
// key order carry over.
func printYAML(w io.Writer, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error formatting YAML: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("error formatting YAML: %w", err)
	}
	blockStyle(&node)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("error formatting YAML: %w", err)
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		n.Style &^= yaml.DoubleQuotedStyle
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}
