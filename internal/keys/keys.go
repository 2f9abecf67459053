// Package keys derives the hierarchical storage key an artifact is migrated
// under.
package keys

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	prefix        = "recordings"
	dateLayout    = "2006/01/02"
	defaultSource = "unknown_agent"
)

// Input carries the attributes the key is derived from. Now supplies the
// fallback date used when the recording has no usable start time, keeping
// the derivation a pure function of its inputs.
type Input struct {
	LocalPath   string
	AgentID     string
	ContentType string
	StartTime   *time.Time
	Now         time.Time
}

// Derive computes the storage key, shaped
// recordings/{audio|screen}/{yyyy}/{mm}/{dd}/{sourceId}/{basename}.
// The second return reports whether the recording's own start time supplied
// the date segments; callers must log the fallback, since it makes the key's
// date diverge from the recording's actual time.
func Derive(in Input) (string, bool) {
	base := filepath.Base(in.LocalPath)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		// Degenerate path: quarantine under the unknown prefix rather
		// than fail the upload over the key alone.
		return strings.Join([]string{prefix, "unknown", in.Now.Format(dateLayout), base}, "/"), false
	}

	date, fromRecording := in.Now, false
	if in.StartTime != nil {
		date, fromRecording = *in.StartTime, true
	}

	category := "screen"
	if strings.HasPrefix(in.ContentType, "audio") {
		category = "audio"
	}

	return strings.Join([]string{
		prefix, category, date.Format(dateLayout), sourceID(in.AgentID), base,
	}, "/"), fromRecording
}

// sourceID normalizes the agent identifier into a single key segment. Agent
// ids sometimes arrive as DOMAIN\user or with path fragments attached; only
// the final segment may enter the key hierarchy.
func sourceID(agentID string) string {
	id := strings.TrimSpace(agentID)
	if i := strings.LastIndexAny(id, `\/`); i >= 0 {
		id = id[i+1:]
	}
	if id == "" {
		return defaultSource
	}
	return id
}
