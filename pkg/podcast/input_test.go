package podcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	input, errs := Validate(RawInput{Topic: "history of space exploration"})
	require.Nil(t, errs)

	assert.Equal(t, "history of space exploration", input.Topic)
	assert.Equal(t, DefaultDurationMinutes, input.DurationMinutes)
	assert.Equal(t, "en", input.Language)
	assert.Equal(t, ToneInformative, input.Tone)
	assert.Equal(t, ContentEducational, input.ContentType)
	assert.Equal(t, "general", input.TargetAudience)
	assert.Equal(t, FormatSoloHost, input.Format)
}

func TestValidate_TopicRequired(t *testing.T) {
	_, errs := Validate(RawInput{Topic: "   "})
	require.NotNil(t, errs)
	assert.Contains(t, errs, "topic")
}

func TestValidate_DurationBounds(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		wantErr  bool
	}{
		{"below minimum", 1, true},
		{"at minimum", 2, false},
		{"at maximum", 20, false},
		{"above maximum", 45, true},
		{"zero uses default", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, errs := Validate(RawInput{Topic: "go", DurationMinutes: tt.duration})
			if tt.wantErr {
				require.NotNil(t, errs)
				assert.Contains(t, errs, "durationMinutes")
				return
			}
			require.Nil(t, errs)
			if tt.duration == 0 {
				assert.Equal(t, DefaultDurationMinutes, input.DurationMinutes)
			} else {
				assert.Equal(t, int(tt.duration), input.DurationMinutes)
			}
		})
	}
}

func TestValidate_LanguageAllowList(t *testing.T) {
	_, errs := Validate(RawInput{Topic: "go", Language: "xx"})
	require.NotNil(t, errs)
	assert.Contains(t, errs, "language")

	input, errs := Validate(RawInput{Topic: "go", Language: "ES"})
	require.Nil(t, errs)
	assert.Equal(t, "es", input.Language)
}

func TestValidate_UnknownEnumsFallBack(t *testing.T) {
	input, errs := Validate(RawInput{
		Topic:       "go",
		Tone:        "sarcastic",
		ContentType: "opera",
		Format:      "duet",
	})
	require.Nil(t, errs)
	assert.Equal(t, ToneInformative, input.Tone)
	assert.Equal(t, ContentEducational, input.ContentType)
	assert.Equal(t, FormatSoloHost, input.Format)
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	_, errs := Validate(RawInput{DurationMinutes: 99, Language: "zz"})
	require.NotNil(t, errs)
	assert.Len(t, errs, 3)
	assert.NotEmpty(t, errs.Error())
}
