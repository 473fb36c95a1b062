// Command defschema writes the editor-facing JSON Schemas for definition
// files. The loader's bundled schemas are checked against the same structs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"vira-wilds/sim/internal/defs"
)

func main() {
	outDir := flag.String("out", "", "directory to write the JSON schemas into")
	flag.Parse()

	if *outDir == "" {
		logrus.Fatal("defschema: -out is required")
	}
	written, err := writeAll(*outDir, defs.AuthoringSchemas())
	if err != nil {
		logrus.Fatalf("defschema: %v", err)
	}
	logrus.WithFields(logrus.Fields{"dir": *outDir, "files": written}).Info("schemas written")
}

func writeAll(dir string, docs []defs.AuthoringSchema) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create %q: %w", dir, err)
	}
	for i, doc := range docs {
		data, err := json.MarshalIndent(doc.Reflect(), "", "  ")
		if err != nil {
			return i, fmt.Errorf("marshal %s: %w", doc.File, err)
		}
		if err := os.WriteFile(filepath.Join(dir, doc.File), append(data, '\n'), 0o644); err != nil {
			return i, fmt.Errorf("write %s: %w", doc.File, err)
		}
	}
	return len(docs), nil
}
