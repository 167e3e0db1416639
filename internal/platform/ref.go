package platform

import (
	"regexp"
	"strings"
)

var (
	mentionRe       = regexp.MustCompile(`^<@!?(\d+)>$`)
	inlineMentionRe = regexp.MustCompile(`<@!?(\d+)>`)
	snowflakeRe     = regexp.MustCompile(`^\d{15,21}$`)
)

// ParseUserRef extracts a user ID from a mention (<@id>, <@!id>) or a raw
// snowflake ID.
func ParseUserRef(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if m := mentionRe.FindStringSubmatch(ref); m != nil {
		return m[1], true
	}
	if snowflakeRe.MatchString(ref) {
		return ref, true
	}
	return "", false
}

// OrderMentions sorts the mentioned user IDs by where they first appear in
// content. IDs that do not appear keep their relative order at the end.
func OrderMentions(content string, ids []string) []string {
	pending := make(map[string]bool, len(ids))
	for _, id := range ids {
		pending[id] = true
	}

	out := make([]string, 0, len(ids))
	for _, m := range inlineMentionRe.FindAllStringSubmatch(content, -1) {
		if pending[m[1]] {
			out = append(out, m[1])
			delete(pending, m[1])
		}
	}
	for _, id := range ids {
		if pending[id] {
			out = append(out, id)
			delete(pending, id)
		}
	}
	return out
}
