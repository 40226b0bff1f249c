// Package logging builds the slog loggers used across strollcast and
// standardizes the structured attribute keys emitted by the pipeline.
package logging
