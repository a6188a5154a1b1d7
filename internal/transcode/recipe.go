package transcode

import (
	"fmt"

	"dreambees-video-pipeline/internal/domain/ports/adapter"
)

// JobInputs are the storage keys a pipeline run produced for one job.
type JobInputs struct {
	ImageKey     string
	AudioKey     string
	SubtitlesKey string
	OutputKey    string
}

// BuildRecipe assembles the fixed vertical-video encode for one job.
// Every job uses the same 1080x1920 profile; only the input keys and the
// output destination vary.
func BuildRecipe(role, jobID string, in JobInputs) *adapter.EncodeRecipe {
	return &adapter.EncodeRecipe{
		Role:         role,
		ImageKey:     in.ImageKey,
		AudioKey:     in.AudioKey,
		SubtitlesKey: in.SubtitlesKey,

		Destination:  fmt.Sprintf("output/%s.mp4", jobID),
		NameModifier: "_output",
		Extension:    ".mp4",

		Video: adapter.VideoSettings{
			Width:             1080,
			Height:            1920,
			Codec:             "H_264",
			BitrateBps:        5000000,
			RateControlMode:   "CBR",
			CodecProfile:      "MAIN",
			GopSize:           90,
			GopClosedCadence:  1,
			EntropyEncoding:   "CABAC",
			QualityTuning:     "SINGLE_PASS",
			FramerateNum:      30,
			FramerateDen:      1,
			SceneChangeDetect: false,
		},
		Audio: adapter.AudioSettings{
			Codec:        "AAC",
			BitrateBps:   96000,
			SampleRateHz: 48000,
			CodecProfile: "LC",
			CodingMode:   "CODING_MODE_2_0",
		},
		Container: adapter.ContainerSettings{
			Format:        "MP4",
			MoovPlacement: "PROGRESSIVE_DOWNLOAD",
		},
		Burnin: adapter.BurninStyle{
			FontColor:         "WHITE",
			FontSize:          72,
			FontOpacity:       100,
			BackgroundColor:   "NONE",
			BackgroundOpacity: 0,
			OutlineColor:      "BLACK",
			OutlineSize:       6,
			ShadowColor:       "BLACK",
			ShadowOpacity:     100,
			ShadowXOffset:     4,
			ShadowYOffset:     4,
			XPosition:         540,
			YPosition:         1600,
		},
		Metadata: map[string]string{
			"Application": "DreamBees Video Generator",
		},
	}
}
