package processor

import (
	"rinse/internal/guard"
	"rinse/internal/metadata"
)

type Mode int

const (
	ModeInspect Mode = iota
	ModeClean
)

type Options struct {
	Mode           Mode
	InPlace        bool
	OutputDir      string
	SkipDuplicates bool
	Insights       bool
	Workers        int

	Handler *metadata.Handler
	Guard   *guard.Guard
}

type Job struct {
	Path    string
	RelPath string
	Display string

	seen *seenSet
}

type Result struct {
	Path       string
	RelPath    string
	Display    string
	Supported  bool
	Skipped    bool
	Err        error
	TagCount   int
	BytesSaved int64
	Document   *metadata.Document
	Insights   []Insight
}

type Summary struct {
	Total      int
	Processed  int
	Skipped    int
	Errors     int
	Tags       int
	BytesSaved int64
}

// Report is the per-file outcome surfaced to the presentation layer.
type Report struct {
	Path     string
	Document *metadata.Document
	Insights []Insight
	Err      error
	Skipped  bool
}

type Insight struct {
	Kind    string
	Message string
}

type ProgressUpdate struct {
	TotalDelta      int
	ProcessedDelta  int
	SkippedDelta    int
	ErrorDelta      int
	TagDelta        int
	BytesSavedDelta int64
}
