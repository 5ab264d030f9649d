// Package domain contains the core learning entities of the trainer: the
// vocabulary items a learner studies, the per-item spaced repetition record,
// and the value types (outcomes, phases) that describe how a record evolves.
// It is independent of any storage or delivery mechanism.
package domain
