// Package scanner walks the recording storage tree and feeds artifact pairs
// into the index.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/callvault/callvault/internal/index"
	"github.com/callvault/callvault/internal/metadata"
)

// defaultContentType is assumed when the companion document does not state
// one; every artifact in the tree is an audio recording unless marked.
const defaultContentType = "audio/wav"

// Outcome classifies the handling of one companion document.
type Outcome int

const (
	// Indexed means a new row was inserted.
	Indexed Outcome = iota
	// AlreadyIndexed means the filename was seen in a previous sweep.
	AlreadyIndexed
	// Skipped means the companion document had no matching artifact.
	Skipped
	// Failed means the companion document could not be parsed.
	Failed
)

// Summary aggregates per-item outcomes for one sweep. AlreadyIndexed items
// are logged but not counted: a re-scan of an unchanged tree reports zero
// processed entries.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Inserter is the slice of the index store the scanner needs.
type Inserter interface {
	InsertIfAbsent(ctx context.Context, e *index.Entry) (bool, error)
}

// Scanner pairs companion documents with artifacts and indexes them.
type Scanner struct {
	store Inserter
	log   *slog.Logger
}

// New creates a Scanner writing through the given store.
func New(store Inserter, log *slog.Logger) *Scanner {
	return &Scanner{store: store, log: log}
}

// Sweep walks root and indexes every document/artifact pair found. A missing
// root is fatal; every per-file problem is contained, classified, and
// aggregated into the summary. Insert errors are not individually
// recoverable and abort the sweep so the caller can roll the transaction
// back.
func (s *Scanner) Sweep(ctx context.Context, root string) (Summary, error) {
	if _, err := os.Stat(root); err != nil {
		return Summary{}, fmt.Errorf("storage path not found: %s: %w", root, err)
	}

	var sum Summary
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".xml") {
			return nil
		}
		outcome, err := s.processDocument(ctx, path)
		if err != nil {
			return err
		}
		switch outcome {
		case Indexed:
			sum.Processed++
		case Skipped:
			sum.Skipped++
		case Failed:
			sum.Failed++
		}
		return nil
	})
	if err != nil {
		return sum, err
	}
	return sum, nil
}

// processDocument handles one companion document. The returned error is
// reserved for store failures; parse and pairing problems come back as
// outcomes.
func (s *Scanner) processDocument(ctx context.Context, xmlPath string) (Outcome, error) {
	base := strings.TrimSuffix(filepath.Base(xmlPath), ".xml")
	wavPath := strings.TrimSuffix(xmlPath, ".xml") + ".wav"

	if _, err := os.Stat(wavPath); err != nil {
		s.log.Warn("WAV file not found for document, skipping", "document", xmlPath)
		return Skipped, nil
	}

	attrs, ok := metadata.Extract(xmlPath)
	if !ok {
		s.log.Error("Failed to parse companion document", "document", xmlPath)
		return Failed, nil
	}

	inserted, err := s.store.InsertIfAbsent(ctx, entryFrom(base, wavPath, attrs))
	if err != nil {
		return Failed, err
	}
	if !inserted {
		s.log.Info("Skipped (already indexed)", "artifact", wavPath)
		return AlreadyIndexed, nil
	}
	s.log.Info("Indexed", "artifact", wavPath)
	return Indexed, nil
}

// entryFrom builds the index row for one artifact pair.
func entryFrom(filename, wavPath string, attrs *metadata.RecordingAttributes) *index.Entry {
	var startTime *time.Time
	if t, ok := attrs.StartTimeValue(); ok {
		startTime = &t
	}
	contentType := attrs.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	return &index.Entry{
		Filename:    filename,
		AgentID:     attrs.AgentID,
		Extension:   attrs.Extension,
		CallerID:    attrs.CallerID,
		CalledID:    attrs.CalledID,
		StartTime:   startTime,
		Duration:    attrs.Duration,
		ContentType: contentType,
		LocalPath:   wavPath,
	}
}
