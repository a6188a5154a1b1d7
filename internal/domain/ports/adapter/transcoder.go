package adapter

import "context"

// VideoSettings describes the fixed video encode used for every job.
type VideoSettings struct {
	Width             int
	Height            int
	Codec             string // "H_264"
	BitrateBps        int
	RateControlMode   string // "CBR"
	CodecProfile      string
	GopSize           int
	GopClosedCadence  int
	EntropyEncoding   string
	QualityTuning     string
	FramerateNum      int
	FramerateDen      int
	SceneChangeDetect bool
}

type AudioSettings struct {
	Codec        string // "AAC"
	BitrateBps   int
	SampleRateHz int
	CodecProfile string // "LC"
	CodingMode   string // stereo
}

type ContainerSettings struct {
	Format        string // "MP4"
	MoovPlacement string // progressive download
}

// BurninStyle is the fixed caption burn-in style.
type BurninStyle struct {
	FontColor         string
	FontSize          int
	FontOpacity       int
	BackgroundColor   string
	BackgroundOpacity int
	OutlineColor      string
	OutlineSize       int
	ShadowColor       string
	ShadowOpacity     int
	ShadowXOffset     int
	ShadowYOffset     int
	XPosition         int
	YPosition         int
}

// EncodeRecipe is the full submission contract for one remote transcode
// job: a single image composited full-frame over a generated canvas,
// narration audio attached, and the SRT track burned in.
type EncodeRecipe struct {
	Role         string
	ImageKey     string
	AudioKey     string
	SubtitlesKey string

	// Destination is a directory-style base path, not an exact file: the
	// vendor derives the real object name from it plus NameModifier and
	// Extension.
	Destination  string
	NameModifier string
	Extension    string

	Video     VideoSettings
	Audio     AudioSettings
	Container ContainerSettings
	Burnin    BurninStyle

	Metadata map[string]string
}

// RemoteJob is a snapshot of the vendor-side job. Status is the vendor's
// raw status string; mapping to the canonical internal state machine is
// the transcode package's job.
type RemoteJob struct {
	ID                string
	Status            string
	Percent           *int
	ErrorMessage      string
	OutputDestination string
	NameModifier      string
	Extension         string
}

// Transcoder is the port for the managed transcoding service.
type Transcoder interface {
	Submit(ctx context.Context, recipe *EncodeRecipe) (string, error)
	GetJob(ctx context.Context, remoteJobID string) (*RemoteJob, error)
}
