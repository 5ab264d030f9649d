// Package store defines the persistence boundary of the trainer.
// KVStore abstracts a byte-blob key-value store; RecordStore layers the
// SRS record map on top of it and keeps memory and storage in step.
package store
