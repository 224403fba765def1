package llm

import "strings"

// cleanReply strips the wrapping chat models tend to add around a bare
// translation: a code fence, a "Translation:" label, or matching quotes the
// source text did not have.
func cleanReply(reply, source string) string {
	out := strings.TrimSpace(reply)
	if strings.HasPrefix(out, "```") {
		body := out[3:]
		if nl := strings.IndexAny(body, "\r\n"); nl >= 0 && !strings.Contains(strings.TrimSpace(body[:nl]), " ") {
			body = body[nl+1:]
		}
		if idx := strings.LastIndex(body, "```"); idx >= 0 {
			body = body[:idx]
		}
		out = strings.TrimSpace(body)
	}
	for _, label := range []string{"Translation:", "Translated text:"} {
		if len(out) > len(label) && strings.EqualFold(out[:len(label)], label) {
			out = strings.TrimSpace(out[len(label):])
		}
	}
	src := strings.TrimSpace(source)
	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}, {"«", "»"}} {
		if strings.HasPrefix(out, q[0]) && strings.HasSuffix(out, q[1]) && len(out) > len(q[0])+len(q[1]) &&
			!strings.HasPrefix(src, q[0]) {
			out = strings.TrimSpace(out[len(q[0]) : len(out)-len(q[1])])
			break
		}
	}
	return out
}
