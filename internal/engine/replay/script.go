package replay

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/base-tetris/internal/engine"
)

//go:embed scripts/demo.yaml
var demoYAML []byte

// Script is a recorded sequence of engine observations.
type Script struct {
	Title         string `yaml:"title"`
	FramesPerStep int    `yaml:"frames_per_step"`
	Steps         []Step `yaml:"steps"`
}

// Step is one observation in a script.
type Step struct {
	Tag   string   `yaml:"tag"`
	Score int      `yaml:"score"`
	Lines int      `yaml:"lines"`
	Queue []string `yaml:"queue,omitempty"`

	// Board rows, top to bottom. Piece letters (IOTSZJL) are filled cells,
	// anything else is empty. Short rows and missing rows are padded.
	Board []string `yaml:"board,omitempty"`
}

// step is the validated form of Step.
type step struct {
	snap  engine.Snapshot
	queue []rune
	board []string
}

// DefaultFramesPerStep is used when a script leaves frames_per_step unset.
const DefaultFramesPerStep = 30

// Demo returns the embedded demo script.
func Demo() (*Script, error) {
	return Parse(demoYAML)
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay: failed to read script %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return s, nil
}

// Parse decodes and validates a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("replay: failed to parse script: %w", err)
	}
	if _, err := s.compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) compile() ([]step, error) {
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("replay: script has no steps")
	}
	if s.FramesPerStep < 0 {
		return nil, fmt.Errorf("replay: frames_per_step must not be negative, got %d", s.FramesPerStep)
	}

	out := make([]step, 0, len(s.Steps))
	for i, st := range s.Steps {
		tag, ok := engine.ParseLifecycle(strings.ToLower(strings.TrimSpace(st.Tag)))
		if !ok {
			return nil, fmt.Errorf("replay: step %d: unknown tag %q", i, st.Tag)
		}
		if tag == engine.Idle {
			return nil, fmt.Errorf("replay: step %d: idle steps are not allowed", i)
		}
		if i == 0 && tag != engine.Playing {
			return nil, fmt.Errorf("replay: step 0 must be playing, got %s", tag)
		}
		if st.Score < 0 || st.Lines < 0 {
			return nil, fmt.Errorf("replay: step %d: score and lines must not be negative", i)
		}
		if len(st.Board) > engine.BoardRows {
			return nil, fmt.Errorf("replay: step %d: board has %d rows, max %d", i, len(st.Board), engine.BoardRows)
		}

		var queue []rune
		for _, p := range st.Queue {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			queue = append(queue, []rune(strings.ToUpper(p))[0])
		}

		out = append(out, step{
			snap:  engine.Snapshot{Tag: tag, Score: st.Score, Lines: st.Lines},
			queue: queue,
			board: st.Board,
		})
	}
	return out, nil
}

func (s *Script) framesPerStep() int {
	if s.FramesPerStep == 0 {
		return DefaultFramesPerStep
	}
	return s.FramesPerStep
}
