// Package services defines the shared error taxonomy used to classify
// failures from external collaborators (synthesis API, ffmpeg/ffprobe,
// object storage) and from pipeline validation.
package services
