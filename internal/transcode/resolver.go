package transcode

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"dreambees-video-pipeline/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// OutputLocation pins down where a finished transcode landed its file.
type OutputLocation struct {
	Key          string    `json:"key"`
	Bucket       string    `json:"bucket"`
	URI          string    `json:"uri"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// LocationCache remembers resolved output locations per remote job.
// A nil, nil return means a cache miss.
type LocationCache interface {
	Get(ctx context.Context, remoteJobID string) (*OutputLocation, error)
	Put(ctx context.Context, remoteJobID string, loc *OutputLocation) error
	Forget(ctx context.Context, remoteJobID string) error
}

// Resolver finds the real output object of a remote transcode job. The
// vendor derives the final object name from the destination, a name
// modifier and an extension, so the exact key must be recomputed and
// verified against storage rather than trusted.
type Resolver struct {
	transcoder adapter.Transcoder
	storage    adapter.ObjectStorage
	cache      LocationCache
	bucket     string
	log        *zerolog.Logger
}

func NewResolver(tc adapter.Transcoder, storage adapter.ObjectStorage, cache LocationCache, bucket string, log *zerolog.Logger) *Resolver {
	return &Resolver{transcoder: tc, storage: storage, cache: cache, bucket: bucket, log: log}
}

// Resolve returns the output location for a remote job, or nil, nil when
// the output has not appeared in storage yet. Cached locations are
// verified against storage and fall through to a fresh lookup when stale.
func (r *Resolver) Resolve(ctx context.Context, remoteJobID string) (*OutputLocation, error) {
	if r.cache != nil {
		loc, err := r.cache.Get(ctx, remoteJobID)
		if err != nil {
			r.log.Warn().Err(err).Str("remote_job_id", remoteJobID).Msg("output cache read failed")
		}
		if loc != nil {
			ok, err := r.storage.Exists(ctx, loc.Key)
			if err == nil && ok {
				return loc, nil
			}
			r.log.Debug().Str("remote_job_id", remoteJobID).Str("key", loc.Key).
				Msg("cached output location is stale")
			if err := r.cache.Forget(ctx, remoteJobID); err != nil {
				r.log.Warn().Err(err).Str("remote_job_id", remoteJobID).Msg("evict stale output location")
			}
		}
	}

	job, err := r.transcoder.GetJob(ctx, remoteJobID)
	if err != nil {
		return nil, fmt.Errorf("describe transcode job: %w", err)
	}

	dir, base, expected := expectedOutput(job)
	if expected != "" {
		ok, err := r.storage.Exists(ctx, expected)
		if err != nil {
			r.log.Warn().Err(err).Str("key", expected).Msg("output existence check failed")
		}
		if ok {
			loc := r.describe(ctx, expected)
			r.remember(ctx, remoteJobID, loc)
			return loc, nil
		}
	}

	// The vendor occasionally names the object differently than the
	// recomputed key. Fall back to listing the destination directory and
	// take the first object that shares the job's basename.
	if dir != "" {
		objs, err := r.storage.List(ctx, dir+"/")
		if err != nil {
			return nil, fmt.Errorf("list output dir: %w", err)
		}
		for _, o := range objs {
			if strings.HasPrefix(path.Base(o.Key), base) {
				loc := r.location(o)
				r.remember(ctx, remoteJobID, loc)
				return loc, nil
			}
		}
	}

	return nil, nil
}

// expectedOutput recomputes the object key the vendor should have
// written: destination directory plus basename plus modifier plus
// extension. base comes back without the modifier so listing fallbacks
// can match either form.
func expectedOutput(job *adapter.RemoteJob) (dir, base, key string) {
	dest := strings.TrimPrefix(strings.TrimSpace(job.OutputDestination), "/")
	if dest == "" {
		return "", "", ""
	}
	dir = path.Dir(dest)
	if dir == "." {
		dir = ""
	}
	name := path.Base(dest)
	base = strings.TrimSuffix(name, path.Ext(name))
	ext := job.Extension
	if ext == "" {
		ext = ".mp4"
	}
	key = path.Join(dir, base+job.NameModifier+ext)
	return dir, base, key
}

func (r *Resolver) describe(ctx context.Context, key string) *OutputLocation {
	loc := &OutputLocation{
		Key:    key,
		Bucket: r.bucket,
		URI:    fmt.Sprintf("s3://%s/%s", r.bucket, key),
	}
	objs, err := r.storage.List(ctx, key)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("output detail listing failed")
		return loc
	}
	for _, o := range objs {
		if o.Key == key {
			loc.Size = o.Size
			loc.LastModified = o.LastModified
			break
		}
	}
	return loc
}

func (r *Resolver) location(o adapter.ObjectInfo) *OutputLocation {
	return &OutputLocation{
		Key:          o.Key,
		Bucket:       r.bucket,
		URI:          fmt.Sprintf("s3://%s/%s", r.bucket, o.Key),
		Size:         o.Size,
		LastModified: o.LastModified,
	}
}

func (r *Resolver) remember(ctx context.Context, remoteJobID string, loc *OutputLocation) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Put(ctx, remoteJobID, loc); err != nil {
		r.log.Warn().Err(err).Str("remote_job_id", remoteJobID).Msg("output cache write failed")
	}
}
