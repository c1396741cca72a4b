// Package config holds the options of a corpreport run and loads the
// optional .corpreport YAML file that maps source headers, picks reports
// and sets chart and output defaults.
package config
