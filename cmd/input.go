package cmd

import (
	"fmt"
	"io"
	"os"
)

// readInput returns inline when set, otherwise the contents of file ("-" for stdin).
func readInput(in io.Reader, inline, file string) (string, error) {
	switch {
	case inline != "" && file != "":
		return "", fmt.Errorf("use either --content or --file, not both")
	case inline != "":
		return inline, nil
	case file == "-":
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no content given, use --content or --file")
}
