package ssml

import (
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text",
			input: "Plants make food.",
			want:  `<speak><prosody rate="medium" pitch="medium">Plants make food.</prosody></speak>`,
		},
		{
			name:  "ampersand and pause",
			input: `Salt & water<break time="500ms"/>mix.`,
			want:  `<speak><prosody rate="medium" pitch="medium">Salt &amp; water<break time="500ms"/>mix.</prosody></speak>`,
		},
		{
			name:  "all reserved characters",
			input: `a<b>"c"'d'&`,
			want:  `<speak><prosody rate="medium" pitch="medium">a&lt;b&gt;&quot;c&quot;&apos;d&apos;&amp;</prosody></speak>`,
		},
		{
			name:  "multiple pauses",
			input: `One<break time="1s"/>Two <break strength="weak" />Three`,
			want:  `<speak><prosody rate="medium" pitch="medium">One<break time="1s"/>Two <break strength="weak" />Three</prosody></speak>`,
		},
		{
			name:  "other tags are escaped",
			input: `<emphasis>loud</emphasis>`,
			want:  `<speak><prosody rate="medium" pitch="medium">&lt;emphasis&gt;loud&lt;/emphasis&gt;</prosody></speak>`,
		},
		{
			name:  "empty",
			input: "",
			want:  `<speak><prosody rate="medium" pitch="medium"></prosody></speak>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Build(tt.input); got != tt.want {
				t.Errorf("Build(%q)\n got: %s\nwant: %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuild_PauseConstantSurvives(t *testing.T) {
	got := Build("First section." + Pause + "Second & last.")
	if !strings.Contains(got, Pause) {
		t.Errorf("pause directive was altered: %s", got)
	}
	if !strings.Contains(got, "Second &amp; last.") {
		t.Errorf("ampersand not escaped: %s", got)
	}
}

func TestBuild_RunTwiceDoubleEscapes(t *testing.T) {
	once := Build("a & b")
	twice := Build(once)
	if !strings.Contains(twice, "&amp;amp;") {
		t.Errorf("expected double escaping on re-run, got %s", twice)
	}
}

func TestStripDirectives(t *testing.T) {
	got := StripDirectives("One." + Pause + "Two.  " + Pause + " Three.")
	if got != "One. Two. Three." {
		t.Errorf("StripDirectives() = %q", got)
	}
}
