package transcode

import "testing"

func TestMapRemoteStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"COMPLETE", StatusComplete},
		{"complete", StatusComplete},
		{" Progressing ", StatusProgressing},
		{"ERROR", StatusError},
		{"CANCELED", StatusCanceled},
		{"SUBMITTED", StatusSubmitted},
		{"", StatusSubmitted},
		{"SOMETHING_NEW", StatusSubmitted},
	}
	for _, tc := range cases {
		if got := MapRemoteStatus(tc.raw); got != tc.want {
			t.Errorf("MapRemoteStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
