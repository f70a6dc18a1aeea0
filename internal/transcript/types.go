package transcript

// Transcription matches the JSON document produced by an AWS Transcribe job
type Transcription struct {
	JobName   string   `json:"jobName"`
	AccountID string   `json:"accountId,omitempty"`
	Status    string   `json:"status,omitempty"`
	Results   *Results `json:"results"`
}

// Results holds the recognized items and optional diarization
type Results struct {
	Transcripts   []Transcript   `json:"transcripts"`
	SpeakerLabels *SpeakerLabels `json:"speaker_labels,omitempty"`
	Items         []Item         `json:"items"`
}

// Transcript is the full plain-text transcript AWS includes alongside the items
type Transcript struct {
	Transcript string `json:"transcript"`
}

// SpeakerLabels carries the diarization output
type SpeakerLabels struct {
	Speakers int              `json:"speakers"`
	Segments []SpeakerSegment `json:"segments"`
}

// SpeakerSegment is a contiguous time range attributed to one speaker
type SpeakerSegment struct {
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	SpeakerLabel string `json:"speaker_label"`
}

// Item is one recognized word or punctuation mark
type Item struct {
	StartTime    string        `json:"start_time,omitempty"`
	EndTime      string        `json:"end_time,omitempty"`
	Type         string        `json:"type"`
	Alternatives []Alternative `json:"alternatives"`
}

// Alternative is one recognition candidate for an item; the first is the best
type Alternative struct {
	Confidence string `json:"confidence"`
	Content    string `json:"content"`
}

// Kind distinguishes spoken words from punctuation
type Kind string

const (
	// KindWord is AWS's "pronunciation" item type
	KindWord Kind = "pronunciation"
	// KindPunctuation items carry no timing
	KindPunctuation Kind = "punctuation"
)

// Token is the segmenter's view of an Item
type Token struct {
	Content   string
	Kind      Kind
	StartTime string
	EndTime   string
}

// HasTiming reports whether the token carries both start and end times
func (t Token) HasTiming() bool {
	return t.StartTime != "" && t.EndTime != ""
}

// IsPunctuation reports whether the token is a punctuation mark
func (t Token) IsPunctuation() bool {
	return t.Kind == KindPunctuation
}
