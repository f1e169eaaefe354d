// Package inputs resolves the video and subtitle slots of a burn request to
// files inside the job's working directory.
//
// Each slot is filled either from an uploaded multipart file or by fetching
// a remote URL with a per-slot timeout. Uploads take precedence when a request
// carries both. Files are always written to fixed names ("input<ext>" for the
// video, "subtitles.srt" for the subtitles) so the burn step never sees
// client-controlled paths.
package inputs
