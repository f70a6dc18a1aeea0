package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

var (
	// ErrNotJSON is returned when the input cannot be decoded as JSON
	ErrNotJSON = errors.New("invalid json string provided")
	// ErrInvalidTranscript is returned when the JSON lacks the expected structure
	ErrInvalidTranscript = errors.New("invalid transcription")
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Parse decodes and validates an AWS Transcribe JSON document
func Parse(data []byte) (*Transcription, error) {
	var tr *Transcription
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	if tr == nil {
		return nil, ErrNotJSON
	}

	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return tr, nil
}

// Decode reads a whole document from r and parses it.
// zstd-compressed input is detected by its magic number and decompressed.
func Decode(r io.Reader) (*Transcription, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if magic, err := br.Peek(len(zstdMagic)); err == nil && bytes.Equal(magic, zstdMagic) {
		decoder, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer decoder.Close()
		src = decoder
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read transcription: %w", err)
	}
	return Parse(data)
}

// Load reads and parses the transcription stored at path
func Load(path string) (*Transcription, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcription: %w", err)
	}
	defer f.Close()

	tr, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// Validate checks the structure the segmenter relies on
func (tr *Transcription) Validate() error {
	if tr.Results == nil {
		return fmt.Errorf("%w: missing results", ErrInvalidTranscript)
	}

	for i, item := range tr.Results.Items {
		if len(item.Alternatives) == 0 {
			return fmt.Errorf("%w: item %d has no alternatives", ErrInvalidTranscript, i)
		}
		switch Kind(item.Type) {
		case KindWord, KindPunctuation:
		default:
			return fmt.Errorf("%w: item %d has unknown type %q", ErrInvalidTranscript, i, item.Type)
		}
	}

	return nil
}

// Tokens converts the items into segmenter tokens, keeping the best alternative
func (tr *Transcription) Tokens() []Token {
	tokens := make([]Token, 0, len(tr.Results.Items))
	for _, item := range tr.Results.Items {
		tokens = append(tokens, Token{
			Content:   item.Alternatives[0].Content,
			Kind:      Kind(item.Type),
			StartTime: item.StartTime,
			EndTime:   item.EndTime,
		})
	}
	return tokens
}

// SpeakerSegments returns the diarization segments, or nil when the job had none
func (tr *Transcription) SpeakerSegments() []SpeakerSegment {
	if tr.Results.SpeakerLabels == nil {
		return nil
	}
	return tr.Results.SpeakerLabels.Segments
}
