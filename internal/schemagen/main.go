// Command schemagen writes the JSON schema for the configuration file.
// It is run through go generate from pkg/config.
package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/macropower/termcam/pkg/config"
	"github.com/macropower/termcam/pkg/yaml"
)

const module = "github.com/macropower/termcam"

var outFile = flag.String("o", "schema.json", "Output file for the generated schema")

func main() {
	flag.Parse()

	out, err := filepath.Abs(*outFile)
	if err != nil {
		log.Fatalf("resolve output path: %v", err)
	}

	// Comments are keyed by module-relative directory.
	root, err := moduleRoot()
	if err != nil {
		log.Fatalf("find module root: %v", err)
	}

	err = os.Chdir(root)
	if err != nil {
		log.Fatalf("change directory: %v", err)
	}

	gen := yaml.NewSchemaGenerator(config.NewConfig(), module,
		"pkg/capture",
		"pkg/config",
		"pkg/execs",
		"pkg/geometry",
		"pkg/keys",
		"pkg/render",
		"pkg/x11",
	)

	jsData, err := gen.Generate()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	err = os.WriteFile(out, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}

func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}

		dir = parent
	}
}
