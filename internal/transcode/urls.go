package transcode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dreambees-video-pipeline/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// ErrOutputNotFound means the remote job's output never appeared in
// storage within the configured retry window.
var ErrOutputNotFound = errors.New("transcode output not found")

// URLHandler turns a finished remote job into a playable URL. CDN URLs
// are preferred and verified with a HEAD request; a signed storage URL is
// the fallback when the CDN has not picked the object up yet.
type URLHandler struct {
	resolver   *Resolver
	storage    adapter.ObjectStorage
	http       *http.Client
	cdnDomain  string
	scheme     string
	maxRetries int
	retryDelay time.Duration
	signedTTL  time.Duration
	log        *zerolog.Logger
}

func NewURLHandler(resolver *Resolver, storage adapter.ObjectStorage, cdnDomain string, maxRetries int, retryDelay, signedTTL time.Duration, log *zerolog.Logger) *URLHandler {
	return &URLHandler{
		resolver:   resolver,
		storage:    storage,
		http:       &http.Client{Timeout: 10 * time.Second},
		cdnDomain:  cdnDomain,
		scheme:     "https",
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		signedTTL:  signedTTL,
		log:        log,
	}
}

// AccessibleURL resolves the job's output and returns a URL a client can
// play right now. The output may lag the COMPLETE status by several
// seconds, so resolution failures are retried on a fixed delay.
func (h *URLHandler) AccessibleURL(ctx context.Context, remoteJobID string) (string, error) {
	for attempt := 0; attempt < h.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(h.retryDelay):
			}
		}

		loc, err := h.resolver.Resolve(ctx, remoteJobID)
		if err != nil {
			h.log.Warn().Err(err).Str("remote_job_id", remoteJobID).Int("attempt", attempt+1).
				Msg("output resolution failed")
			continue
		}
		if loc == nil {
			h.log.Debug().Str("remote_job_id", remoteJobID).Int("attempt", attempt+1).
				Msg("output not in storage yet")
			continue
		}

		if h.cdnDomain != "" {
			cdnURL := fmt.Sprintf("%s://%s/%s", h.scheme, h.cdnDomain, loc.Key)
			if h.reachable(ctx, cdnURL) {
				return cdnURL, nil
			}
			h.log.Debug().Str("url", cdnURL).Msg("cdn url not reachable yet")
		}

		signed, err := h.storage.SignedURL(ctx, loc.Key, h.signedTTL)
		if err == nil {
			return signed, nil
		}
		h.log.Warn().Err(err).Str("key", loc.Key).Msg("signing storage url failed")
	}
	return "", ErrOutputNotFound
}

func (h *URLHandler) reachable(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := h.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

// ValidateVideoURL reports whether a stored URL is safe to hand to a
// client: http(s), an .mp4 path, no templating leftovers, and a host we
// actually serve from.
func ValidateVideoURL(raw, cdnDomain string) bool {
	if raw == "" || strings.Contains(raw, "undefined") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	if !strings.HasSuffix(strings.ToLower(u.Path), ".mp4") {
		return false
	}
	if cdnDomain != "" && u.Host != cdnDomain && !strings.HasSuffix(u.Host, ".amazonaws.com") {
		return false
	}
	return true
}
