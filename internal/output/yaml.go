package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

func encodeYAML(w io.Writer, items []any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return err
	}
	return enc.Close()
}
