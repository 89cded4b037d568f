// Package config loads, validates and writes the termcam configuration file.
//
// It wraps the configuration of the other packages so that one YAML document
// covers calibration, rendering, capture and the display.
package config
