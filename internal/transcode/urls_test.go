package transcode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newTestURLHandler(t *testing.T, st *fakeStorage, tc *fakeTranscoder, headStatus int) (*URLHandler, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.WriteHeader(headStatus)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resolver := NewResolver(tc, st, newFakeCache(), "videos", nopLogger())
	h := NewURLHandler(resolver, st, u.Host, 2, time.Millisecond, time.Hour, nopLogger())
	h.scheme = "http" // test server has no TLS
	return h, u.Host
}

func TestAccessibleURLPrefersCDN(t *testing.T) {
	tc := &fakeTranscoder{job: finishedJob()}
	st := newFakeStorage()
	st.objects["output/job-1_output.mp4"] = []byte("video")

	h, host := newTestURLHandler(t, st, tc, http.StatusOK)
	got, err := h.AccessibleURL(context.Background(), "remote-1")
	if err != nil {
		t.Fatalf("AccessibleURL: %v", err)
	}
	want := "http://" + host + "/output/job-1_output.mp4"
	if got != want {
		t.Errorf("url = %q, want %q", got, want)
	}
}

func TestAccessibleURLFallsBackToSigned(t *testing.T) {
	tc := &fakeTranscoder{job: finishedJob()}
	st := newFakeStorage()
	st.objects["output/job-1_output.mp4"] = []byte("video")

	h, _ := newTestURLHandler(t, st, tc, http.StatusForbidden)
	got, err := h.AccessibleURL(context.Background(), "remote-1")
	if err != nil {
		t.Fatalf("AccessibleURL: %v", err)
	}
	if !strings.Contains(got, "signature=") {
		t.Errorf("url = %q, want signed fallback", got)
	}
}

func TestAccessibleURLExhaustsRetries(t *testing.T) {
	tc := &fakeTranscoder{job: finishedJob()}
	st := newFakeStorage() // output never appears

	resolver := NewResolver(tc, st, newFakeCache(), "videos", nopLogger())
	h := NewURLHandler(resolver, st, "", 3, time.Millisecond, time.Hour, nopLogger())
	_, err := h.AccessibleURL(context.Background(), "remote-1")
	if !errors.Is(err, ErrOutputNotFound) {
		t.Errorf("err = %v, want ErrOutputNotFound", err)
	}
}

func TestAccessibleURLHonorsContext(t *testing.T) {
	tc := &fakeTranscoder{job: finishedJob()}
	st := newFakeStorage()

	resolver := NewResolver(tc, st, newFakeCache(), "videos", nopLogger())
	h := NewURLHandler(resolver, st, "", 1000, 50*time.Millisecond, time.Hour, nopLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.AccessibleURL(ctx, "remote-1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context deadline", err)
	}
}

func TestValidateVideoURL(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"cdn url", "https://cdn.example.com/output/job-1_output.mp4", true},
		{"signed storage url", "https://bucket.s3.amazonaws.com/output/job-1_output.mp4?signature=abc", true},
		{"templating leftover", "https://cdn.example.com/output/undefined.mp4", false},
		{"wrong extension", "https://cdn.example.com/output/job-1.mov", false},
		{"wrong host", "https://evil.example.net/output/job-1_output.mp4", false},
		{"not a url", "::bad::", false},
		{"empty", "", false},
		{"relative", "/output/job-1_output.mp4", false},
		{"ftp scheme", "ftp://cdn.example.com/output/job-1_output.mp4", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateVideoURL(tc.raw, "cdn.example.com"); got != tc.want {
				t.Errorf("ValidateVideoURL(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}
