package models

import "time"

// HistoryEntry records one completed conversion run for the history sink.
type HistoryEntry struct {
	ID           string      `json:"id" badgerhold:"key"`
	Timestamp    time.Time   `json:"timestamp"`
	SourceKind   ContentKind `json:"source_kind"`
	OutputPath   string      `json:"output_path"`
	Success      bool        `json:"success"`
	Title        string      `json:"title,omitempty"`
	ChapterCount int         `json:"chapter_count,omitempty"`
	SizeBytes    int64       `json:"size_bytes,omitempty"`
}

// CacheEntry maps a content fingerprint to the book artifact it produced.
// Created on first successful conversion, invalidated only by an explicit
// cache clear, never auto-expired.
type CacheEntry struct {
	Fingerprint  string    `json:"fingerprint" badgerhold:"key"`
	ArtifactPath string    `json:"artifact_path"`
	Hits         uint64    `json:"hits"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunResult is the structured outcome handed back to the triggering
// layer for notification rendering.
type RunResult struct {
	Success      bool        `json:"success"`
	ArtifactPath string      `json:"artifact_path,omitempty"`
	ErrKind      ErrorKind   `json:"error_kind,omitempty"`
	SourceKind   ContentKind `json:"source_kind,omitempty"`
	CacheHit     bool        `json:"cache_hit,omitempty"`
}
