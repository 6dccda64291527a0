// Package storage persists orchestrator run checkpoints.
//
// Checkpoints are stored as json in a key-value backend, see the kvbackend
// package for implementations.
package storage
