// Package handlers implements the HTTP endpoints of the subtitle burner.
//
// Every burn request runs as a job: a fresh identifier, a private working
// directory, concurrent resolution of the video and subtitle inputs, one
// ffmpeg invocation and then either an inline response or relocation into
// durable storage behind a download link. The job directory is removed on
// every exit path.
//
// Errors are classified with package apperr and rendered as
// {"detail": "..."} with the matching status code.
package handlers
