package render

import (
	"time"

	"github.com/macropower/termcam/pkg/ascii"
	"github.com/macropower/termcam/pkg/keys"
)

const DefaultDelay = 100 * time.Millisecond

// Config configures frame pacing, glyphs and quit keys.
type Config struct {
	// Delay is the pause after each printed frame.
	Delay *time.Duration `json:"delay,omitempty" jsonschema:"title=Delay,type=string"`
	// Ramp lists glyphs from darkest to lightest pixel.
	Ramp ascii.Ramp `json:"ramp,omitempty" jsonschema:"title=Ramp"`
	// Quit is the key binding that stops rendering.
	Quit *keys.KeyBind `json:"quit,omitempty" jsonschema:"title=Quit"`
}

func NewConfig() *Config {
	c := &Config{}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults fills unset fields.
func (c *Config) EnsureDefaults() {
	if c.Delay == nil {
		d := DefaultDelay
		c.Delay = &d
	}

	if c.Ramp == "" {
		c.Ramp = ascii.DefaultRamp
	}

	keys.SetDefaultBind(&c.Quit, keys.NewBind("quit",
		keys.New("q"),
		keys.New("esc"),
		keys.New("ctrl+c", keys.WithAlias("⌃c")),
	))
}

// Validate checks the quit keys, the ramp and the delay.
func (c *Config) Validate() error {
	if c.Delay != nil && *c.Delay < 0 {
		return ErrNegativeDelay
	}

	if c.Ramp != "" {
		err := c.Ramp.Validate()
		if err != nil {
			return err
		}
	}

	return keys.ValidateBinds(c.Quit)
}
