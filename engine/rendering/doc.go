// Package rendering holds engine-side mesh, skinning and skeleton records
// produced by model importers.
package rendering
