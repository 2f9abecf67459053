package metadata

import (
	"strings"

	"github.com/beevik/etree"
)

// Extract parses the companion document at path. The second return is false
// only when the document is structurally malformed (unparseable markup or no
// root element). Documents with missing elements still succeed; the
// corresponding fields are left empty.
func Extract(path string) (*RecordingAttributes, bool) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, false
	}
	root := doc.Root()
	if root == nil {
		return nil, false
	}

	attrs := &RecordingAttributes{}

	if segment := findChild(root, "segment"); segment != nil {
		attrs.StartTime = childText(segment, "starttime")
		attrs.ContentType = childText(segment, "contenttype")
		attrs.Duration = childText(segment, "duration")
	}

	// Missing intermediates leave the session fields empty; findChild
	// tolerates a nil parent so the chain short-circuits on its own.
	session := findChild(findChild(findChild(findChild(root,
		"contacts"), "contact"), "sessions"), "session")
	if session != nil {
		attrs.CallerID = childText(session, "ani")
		attrs.CalledID = childText(session, "dnis")
		attrs.Extension = childText(session, "extension")

		agentID := agentTagValue(session)
		if agentID == "" {
			agentID = childText(session, "pbx_login_id")
		}
		attrs.AgentID = agentID
	}

	return attrs, true
}

// findChild returns the first child element with the given local name,
// regardless of namespace prefix. The documents in the field carry an
// optional, sometimes undeclared, namespace prefix on every element.
func findChild(parent *etree.Element, name string) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, child := range parent.ChildElements() {
		if child.Tag == name {
			return child
		}
	}
	return nil
}

// childText returns the trimmed text of the named child, or "".
func childText(parent *etree.Element, name string) string {
	child := findChild(parent, name)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

// agentTagValue searches the session's tags in document order for the first
// tag carrying an attribute element with key="agentid" and returns its value.
// First match wins even when later tags also carry an agent id.
func agentTagValue(session *etree.Element) string {
	tags := findChild(session, "tags")
	if tags == nil {
		return ""
	}
	for _, tag := range tags.ChildElements() {
		if tag.Tag != "tag" {
			continue
		}
		for _, attr := range tag.ChildElements() {
			if attr.Tag != "attribute" || attrValue(attr, "key") != "agentid" {
				continue
			}
			return tagValue(attr)
		}
	}
	return ""
}

// tagValue resolves the value of a matched agentid attribute element. Two
// legacy spellings exist: a namespaced value attribute and a plain one; the
// namespaced spelling wins when both are present. The element's own text is
// the last resort.
func tagValue(attr *etree.Element) string {
	var plain string
	for _, a := range attr.Attr {
		if a.Key != "value" {
			continue
		}
		if a.Space != "" {
			return a.Value
		}
		plain = a.Value
	}
	if plain != "" {
		return plain
	}
	return strings.TrimSpace(attr.Text())
}

// attrValue returns the named XML attribute of el, ignoring any prefix.
func attrValue(el *etree.Element, key string) string {
	for _, a := range el.Attr {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}
