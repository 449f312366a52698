// Package integration runs the monitor end to end against a fake Mercado
// Público API: the sync cycle, the enrichment and the read API together.
package integration
