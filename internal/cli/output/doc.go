// Package output renders command results for the extratls CLI.
//
// Results are written as an aligned table (the default), JSON or YAML.
// Table headers and YAML keys come from the struct's json tags, so one
// result type serves every format.
package output
