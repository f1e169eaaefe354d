/*
Package streaming delivers rendered videos to HTTP clients with timeout
protection.

A slow or vanished client must not pin a handler goroutine and an open file
forever. TimeoutWriter bounds every write and the idle time between writes,
and SendFile uses it to transmit a finished MP4 as an attachment:

	err := streaming.SendFile(r.Context(), w, path, "clip_subtitled.mp4",
		streaming.DefaultConfig())
	if errors.Is(err, streaming.ErrClientGone) {
		return
	}

Errors returned after the first byte has been written cannot be reported to
the client; callers should only log them.
*/
package streaming
