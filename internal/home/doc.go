// Package home holds the homes and devices registry.
package home
