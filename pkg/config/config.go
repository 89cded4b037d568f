package config

import (
	"bytes"
	"fmt"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/termcam/pkg/capture"
	"github.com/macropower/termcam/pkg/geometry"
	"github.com/macropower/termcam/pkg/render"
	"github.com/macropower/termcam/pkg/x11"
	"github.com/macropower/termcam/pkg/yaml"
)

//go:generate go run ../../internal/schemagen -o config.v1beta1.json

const (
	APIVersion = "termcam.jacobcolvin.com/v1beta1"
	Kind       = "Configuration"
)

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed config.v1beta1.json
	schemaJSON []byte

	ValidAPIVersions = []string{APIVersion}
	ValidKinds       = []string{Kind}

	DefaultValidator = yaml.MustNewValidator("/config.v1beta1.json", schemaJSON)
)

//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// Calibration is the pixel size of one terminal character cell.
	Calibration *geometry.Calibration `json:"calibration,omitempty" jsonschema:"title=Calibration"`
	// Render configures frame pacing, glyphs and quit keys.
	Render *render.Config `json:"render,omitempty" jsonschema:"title=Render"`
	// Capture configures the video source.
	Capture *capture.Config `json:"capture,omitempty" jsonschema:"title=Capture"`
	// Display configures the X display used to locate windows.
	Display *x11.Config `json:"display,omitempty" jsonschema:"title=Display"`
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version,required"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind,required"`
}

func NewConfig() *Config {
	c := &Config{
		APIVersion: APIVersion,
		Kind:       Kind,
	}
	c.EnsureDefaults()

	return c
}

func (c *Config) EnsureDefaults() {
	if c.Calibration == nil {
		cal := geometry.DefaultCalibration
		c.Calibration = &cal
	}

	if c.Render == nil {
		c.Render = render.NewConfig()
	} else {
		c.Render.EnsureDefaults()
	}

	if c.Capture == nil {
		c.Capture = capture.NewConfig()
	} else {
		c.Capture.EnsureDefaults()
	}

	if c.Display == nil {
		c.Display = &x11.Config{}
	}
}

// Validate runs the checks that the schema cannot express.
func (c *Config) Validate() error {
	err := c.Calibration.Validate()
	if err != nil {
		return fmt.Errorf("calibration: %w", err)
	}

	err = c.Render.Validate()
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	return nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	setConsts(jss, "apiVersion", "API Version", ValidAPIVersions)
	setConsts(jss, "kind", "Kind", ValidKinds)
}

func setConsts(jss *jsonschema.Schema, property, title string, values []string) {
	prop, ok := jss.Properties.Get(property)
	if !ok {
		panic(property + " property not found in schema")
	}

	for _, v := range values {
		prop.OneOf = append(prop.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: v,
			Title: title,
		})
	}

	_, _ = jss.Properties.Set(property, prop)
}

func (c *Config) MarshalYAML() ([]byte, error) {
	b := &bytes.Buffer{}

	err := yaml.NewEncoder(b).Encode(*c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return b.Bytes(), nil
}
