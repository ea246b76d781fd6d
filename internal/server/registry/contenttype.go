package registry

import (
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

var contentTypeByExt = map[string]string{
	".txt":  "text/plain; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".csv":  "text/csv; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".xml":  "application/xml",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".tar":  "application/x-tar",
	".gz":   "application/gzip",
	".7z":   "application/x-7z-compressed",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".ico":  "image/x-icon",
	".avif": "image/avif",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".wasm": "application/wasm",
}

// ContentType picks a MIME type from the file extension, case-insensitively.
func ContentType(name string) string {
	if ct, ok := contentTypeByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return defaultContentType
}

var activeExt = map[string]bool{
	".html": true, ".htm": true, ".xhtml": true, ".svg": true,
	".js": true, ".mjs": true, ".xml": true,
}

// IsActive reports whether a browser would run script from the file when
// opened directly. Such files must not render in the site's origin.
func IsActive(name string) bool {
	return activeExt[strings.ToLower(filepath.Ext(name))]
}

// Kind groups files for gallery rendering. It looks at the extension only.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindOther Kind = "other"
)

var kindByExt = map[string]Kind{
	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage,
	".gif": KindImage, ".webp": KindImage, ".svg": KindImage,
	".mp4": KindVideo, ".webm": KindVideo, ".ogg": KindVideo,
	".mp3": KindVideo, ".wav": KindVideo, ".flac": KindVideo,
}

func KindOf(name string) Kind {
	if k, ok := kindByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return k
	}
	return KindOther
}
