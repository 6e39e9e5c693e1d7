// Package file provides the TOML-backed configuration store. Keys are
// flattened to dot notation ("ranking.score_floor") and the file can be
// watched for edits, so ranking weights are tunable without a restart.
package file
