package commands

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// urlFile is the mapping form of an input file.
type urlFile struct {
	URLs []string `yaml:"urls"`
}

// readURLFile loads URLs from path. The file may be a YAML list, a YAML
// mapping with a "urls" key, or plain text with one URL per line. Blank
// lines and lines starting with '#' are ignored.
func readURLFile(path string) ([]string, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads user-specified input file
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return parseURLList(data), nil
}

func parseURLList(data []byte) []string {
	var list []string
	if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return cleanURLs(list)
	}

	var doc urlFile
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.URLs) > 0 {
		return cleanURLs(doc.URLs)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return cleanURLs(lines)
}

func cleanURLs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, u := range in {
		u = strings.TrimSpace(u)
		if u == "" || strings.HasPrefix(u, "#") {
			continue
		}
		out = append(out, u)
	}
	return out
}
