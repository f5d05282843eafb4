package subtitle

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain text passes through",
			raw:  "just a sentence",
			want: "just a sentence",
		},
		{
			name: "two cues are flattened",
			raw:  "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:03,000 --> 00:00:04,000\nWorld",
			want: "Hello World",
		},
		{
			name: "multi line cue text is joined",
			raw:  "1\n00:00:01,000 --> 00:00:02,500\nfirst line\nsecond line",
			want: "first line second line",
		},
		{
			name: "pure digit text line is dropped as cue index",
			raw:  "1\n00:00:01,000 --> 00:00:02,000\n42\n\n2\n00:00:03,000 --> 00:00:04,000\nanswer",
			want: "answer",
		},
		{
			name: "timestamps only collapses to original",
			raw:  "00:00:01,000 --> 00:00:02,000",
			want: "00:00:01,000 --> 00:00:02,000",
		},
		{
			name: "windows line endings survive trimming",
			raw:  "1\r\n00:00:01,000 --> 00:00:02,000\r\nHello there\r\n",
			want: "Hello there",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"plain",
		"1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:03,000 --> 00:00:04,000\nWorld",
		"00:00:01,000 --> 00:00:02,000",
		"",
	}
	for _, raw := range inputs {
		once := Normalize(raw)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}

func TestIsSubtitle(t *testing.T) {
	if IsSubtitle("plain text") {
		t.Fatal("plain text misdetected as SRT")
	}
	if IsSubtitle("inline --> arrow without newline") {
		t.Fatal("single line with marker misdetected as SRT")
	}
	if !IsSubtitle("1\n00:00:01,000 --> 00:00:02,000\nHello") {
		t.Fatal("SRT block not detected")
	}
}
