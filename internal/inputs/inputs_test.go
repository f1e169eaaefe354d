package inputs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subtitle-burner/internal/apperr"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		slot     Slot
		src      Source
		wantKind apperr.Kind
		wantErr  string
	}{
		{
			name: "upload with filename",
			slot: SlotVideo,
			src:  Source{Uploaded: true, Filename: "clip.mov"},
		},
		{
			name:     "upload without filename",
			slot:     SlotVideo,
			src:      Source{Uploaded: true},
			wantKind: apperr.KindValidation,
			wantErr:  "Video filename is required",
		},
		{
			name:     "srt upload without filename",
			slot:     SlotSubtitles,
			src:      Source{Uploaded: true, Filename: "  "},
			wantKind: apperr.KindValidation,
			wantErr:  "SRT filename is required",
		},
		{
			name:     "srt wrong extension",
			slot:     SlotSubtitles,
			src:      Source{Uploaded: true, Filename: "subs.vtt"},
			wantKind: apperr.KindValidation,
			wantErr:  "Subtitle file must be .srt format",
		},
		{
			name: "srt extension case insensitive",
			slot: SlotSubtitles,
			src:  Source{Uploaded: true, Filename: "SUBS.SRT"},
		},
		{
			name: "video extension not checked",
			slot: SlotVideo,
			src:  Source{Uploaded: true, Filename: "clip.unknown"},
		},
		{
			name:     "neither upload nor url",
			slot:     SlotVideo,
			src:      Source{},
			wantKind: apperr.KindValidation,
			wantErr:  "Either video file or video_url must be provided",
		},
		{
			name:     "neither for srt",
			slot:     SlotSubtitles,
			src:      Source{URL: "   "},
			wantKind: apperr.KindValidation,
			wantErr:  "Either srt file or srt_url must be provided",
		},
		{
			name:     "non http url",
			slot:     SlotVideo,
			src:      Source{URL: "file:///etc/passwd"},
			wantKind: apperr.KindValidation,
			wantErr:  "video_url must be an absolute http or https URL",
		},
		{
			name: "url only",
			slot: SlotSubtitles,
			src:  Source{URL: "https://example.com/subs.srt"},
		},
		{
			name: "upload wins over url",
			slot: SlotSubtitles,
			src:  Source{Uploaded: true, Filename: "subs.srt", URL: "not a url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.slot, tt.src)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %q", tt.wantErr)
			}
			if apperr.KindOf(err) != tt.wantKind {
				t.Errorf("kind = %v, want %v", apperr.KindOf(err), tt.wantKind)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExtFromURL(t *testing.T) {
	tests := []struct {
		url  string
		def  string
		want string
	}{
		{"https://cdn.example.com/video.webm", ".mp4", ".webm"},
		{"https://cdn.example.com/video.mov?token=abc.def", ".mp4", ".mov"},
		{"https://cdn.example.com/video.mkv#t=10", ".mp4", ".mkv"},
		{"https://cdn.example.com/stream", ".mp4", ".mp4"},
		{"https://cdn.example.com/v1.2/stream", ".mp4", ".mp4"},
		{"https://cdn.example.com/", ".mp4", ".mp4"},
		{"https://cdn.example.com/weird.m$p4", ".mp4", ".mp4"},
		{"://bad", ".mp4", ".mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := ExtFromURL(tt.url, tt.def); got != tt.want {
				t.Errorf("ExtFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestResolveUploadVideo(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(Config{})

	res, err := r.Resolve(context.Background(), SlotVideo, Source{
		Uploaded: true,
		Filename: "clip.mov",
		Body:     strings.NewReader("moov"),
	}, dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if res.Path != filepath.Join(dir, "input.mov") {
		t.Errorf("Path = %s, want input.mov", res.Path)
	}
	if res.OriginalName != "clip.mov" || res.FromURL || res.Bytes != 4 {
		t.Errorf("unexpected result %+v", res)
	}
	data, _ := os.ReadFile(res.Path)
	if string(data) != "moov" {
		t.Errorf("content = %q", data)
	}
}

func TestResolveUploadSubtitles(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(Config{})

	res, err := r.Resolve(context.Background(), SlotSubtitles, Source{
		Uploaded: true,
		Filename: "My Subs.SRT",
		Body:     strings.NewReader("1\n00:00:00,000 --> 00:00:01,000\nHi\n"),
	}, dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Path != filepath.Join(dir, "subtitles.srt") {
		t.Errorf("Path = %s, want subtitles.srt", res.Path)
	}
}

func TestResolveUploadRejectsBadSRTBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(Config{})

	_, err := r.Resolve(context.Background(), SlotSubtitles, Source{
		Uploaded: true,
		Filename: "subs.txt",
		Body:     strings.NewReader("x"),
	}, dir)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("nothing should be written, found %d entries", len(entries))
	}
}

func TestResolveUploadTakesPrecedence(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
	}))
	defer srv.Close()

	r := NewResolver(Config{Client: srv.Client()})
	res, err := r.Resolve(context.Background(), SlotVideo, Source{
		Uploaded: true,
		Filename: "a.mp4",
		Body:     strings.NewReader("x"),
		URL:      srv.URL + "/b.webm",
	}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if res.FromURL || hits != 0 {
		t.Errorf("upload should win: FromURL=%v hits=%d", res.FromURL, hits)
	}
}

func TestResolveURLVideo(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("webm-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	r := NewResolver(Config{Client: srv.Client(), UserAgent: "subtitle-burner/test"})

	res, err := r.Resolve(context.Background(), SlotVideo, Source{URL: srv.URL + "/media/video.webm?sig=1"}, dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Path != filepath.Join(dir, "input.webm") {
		t.Errorf("Path = %s, want input.webm", res.Path)
	}
	if !res.FromURL || res.OriginalName != "" {
		t.Errorf("unexpected result %+v", res)
	}
	if gotUA != "subtitle-burner/test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	data, _ := os.ReadFile(res.Path)
	if string(data) != "webm-bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestResolveURLVideoDefaultExt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	r := NewResolver(Config{Client: srv.Client()})
	res, err := r.Resolve(context.Background(), SlotVideo, Source{URL: srv.URL + "/stream"}, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(res.Path) != "input.mp4" {
		t.Errorf("Path = %s, want input.mp4", res.Path)
	}
}

func TestResolveURLSubtitlesAlwaysSRT(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("1\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	r := NewResolver(Config{Client: srv.Client()})
	res, err := r.Resolve(context.Background(), SlotSubtitles, Source{URL: srv.URL + "/captions"}, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(res.Path) != "subtitles.srt" {
		t.Errorf("Path = %s", res.Path)
	}
}

func TestResolveURLHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	dir := t.TempDir()
	r := NewResolver(Config{Client: srv.Client()})
	_, err := r.Resolve(context.Background(), SlotSubtitles, Source{URL: srv.URL + "/subs.srt"}, dir)
	if !apperr.Is(err, apperr.KindFetch) {
		t.Fatalf("err = %v, want fetch error", err)
	}
	if !strings.Contains(err.Error(), "Failed to download SRT from URL: HTTP 404") {
		t.Errorf("error = %q", err.Error())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("nothing should be written on HTTP error, found %d entries", len(entries))
	}
}

func TestResolveURLTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r := NewResolver(Config{Client: srv.Client(), SubtitleTimeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := r.Resolve(context.Background(), SlotSubtitles, Source{URL: srv.URL + "/subs.srt"}, t.TempDir())
	if !apperr.Is(err, apperr.KindFetch) {
		t.Fatalf("err = %v, want fetch error", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error should mention timeout: %q", err.Error())
	}
	if time.Since(start) > 5*time.Second {
		t.Error("subtitle timeout was not applied")
	}
}

func TestResolveURLTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	r := NewResolver(Config{})
	_, err := r.Resolve(context.Background(), SlotVideo, Source{URL: addr + "/v.mp4"}, t.TempDir())
	if !apperr.Is(err, apperr.KindFetch) {
		t.Fatalf("err = %v, want fetch error", err)
	}
}

func TestNewResolverDefaults(t *testing.T) {
	r := NewResolver(Config{})
	if r.videoTimeout != DefaultVideoTimeout || r.subtitleTimeout != DefaultSubtitleTimeout {
		t.Errorf("timeouts = %v/%v", r.videoTimeout, r.subtitleTimeout)
	}
	if r.client == nil {
		t.Error("client should default")
	}
}
