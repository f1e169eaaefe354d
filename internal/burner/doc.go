// Package burner renders SRT subtitles into video frames by running FFmpeg.
//
// FFmpeg is invoked with an argument vector, never through a shell, and the
// subtitle path and style string are escaped for the filter graph so their
// contents cannot alter the invocation. The audio track is carried over
// unfiltered and re-multiplexed with the filtered video into an MP4 file.
//
// FFmpeg must be installed and available in the system PATH, or configured
// with an explicit path.
package burner
