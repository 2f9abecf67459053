// Package metadata extracts recording attributes from the companion XML
// document written next to each recording artifact.
package metadata

import "time"

// RecordingAttributes holds the call attributes extracted from one companion
// document. All fields are raw strings as found in the document; StartTime is
// interpreted lazily via StartTimeValue.
type RecordingAttributes struct {
	AgentID     string
	Extension   string
	CallerID    string
	CalledID    string
	StartTime   string
	Duration    string
	ContentType string
}

// startTimeLayouts are the formats accepted for the segment starttime, in
// order of preference.
var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// StartTimeValue parses the raw start time. The second return is false when
// the field is empty or not in a recognized format.
func (a *RecordingAttributes) StartTimeValue() (time.Time, bool) {
	if a.StartTime == "" {
		return time.Time{}, false
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, a.StartTime); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
