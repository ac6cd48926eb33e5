package form

import "strings"

// ClassifyImage turns a stored cover image value into something an <img>
// can display. URLs and data URIs pass through; raw base64 JPEG and PNG
// payloads get a data URI prefix. Anything else means no image.
func ClassifyImage(s string) (string, bool) {
	v := strings.TrimSpace(s)
	switch {
	case v == "":
		return "", false
	case strings.HasPrefix(v, "http://"), strings.HasPrefix(v, "https://"), strings.HasPrefix(v, "//"):
		return v, true
	case strings.HasPrefix(v, "data:image/"):
		return v, true
	case strings.HasPrefix(v, "/9j/"):
		return "data:image/jpeg;base64," + v, true
	case strings.HasPrefix(v, "iVBORw0KGgo"):
		return "data:image/png;base64," + v, true
	default:
		return "", false
	}
}
