package handlers

import (
	"path"
	"strings"
)

const outputExt = ".mp4"

// OutputName returns the download filename for a job. A requested name is
// a base name and gets .mp4 appended (a trailing .mp4 is not doubled);
// otherwise the uploaded video's stem is suffixed with _subtitled; otherwise
// the job id's first eight characters are used.
func OutputName(requested, videoName, jobID string) string {
	if base := requestedBase(requested); base != "" {
		return base + outputExt
	}
	if stem := fileStem(videoName); stem != "" {
		return stem + "_subtitled" + outputExt
	}

	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}
	return "subtitled_" + short + outputExt
}

// requestedBase keeps dots in a caller-chosen name; only directories,
// surrounding whitespace and a trailing .mp4 are removed.
func requestedBase(name string) string {
	name = baseName(name)
	if strings.HasSuffix(strings.ToLower(name), outputExt) {
		name = strings.TrimSpace(name[:len(name)-len(outputExt)])
	}
	if strings.Trim(name, ".") == "" {
		return ""
	}
	return name
}

// fileStem strips directories and the extension from name.
func fileStem(name string) string {
	name = baseName(name)
	name = strings.TrimSuffix(name, path.Ext(name))
	return strings.TrimSpace(strings.Trim(name, "."))
}

func baseName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}
