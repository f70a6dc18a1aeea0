package segmenter

// FlushReason records which boundary condition closed a cue
type FlushReason string

const (
	FlushSpeaker     FlushReason = "speaker"
	FlushLength      FlushReason = "length"
	FlushDuration    FlushReason = "duration"
	FlushPunctuation FlushReason = "punctuation"
	FlushEnd         FlushReason = "end_of_stream"
)

// Stats summarizes one segmentation run
type Stats struct {
	Tokens  int
	Cues    int
	Flushes map[FlushReason]int
}

func newStats() Stats {
	return Stats{Flushes: make(map[FlushReason]int)}
}

func (s *Stats) recordCue(reason FlushReason) {
	s.Cues++
	s.Flushes[reason]++
}
