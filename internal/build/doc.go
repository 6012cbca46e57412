// Package build wires the asset pipelines into named tasks.
//
// The Orchestrator owns the four build graphs (styles, pico:scope, licenses
// and clean). The Runner executes them by name, alone or in series, and
// reports progress the way task runners usually do:
//
//	[10:42:01] Starting 'styles'...
//	[10:42:02] Finished 'styles' after 412 ms
package build
