// Package config loads the JSON configuration shared by the command line
// tools and builds their logger.
package config
