// Package config loads and validates Locus Core configuration.
//
// Configuration comes from three layers, later layers overriding earlier:
//
//  1. Hardcoded defaults (Default)
//  2. A YAML file (config.yaml)
//  3. LOCUS_* environment variables
//
// The loaded Config is passed by value into each component at startup;
// nothing reads configuration ambiently after initialisation.
package config
