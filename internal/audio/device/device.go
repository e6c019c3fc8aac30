// Package device plays audio clips on the local sound card through the beep
// speaker.
package device

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/vovakirdan/base-tetris/internal/audio"
)

// DefaultSampleRate is the device rate used when none is configured.
const DefaultSampleRate = beep.SampleRate(44100)

const resampleQuality = 4

var (
	initOnce sync.Once
	initErr  error
	rate     beep.SampleRate
)

// Init opens the speaker once per process. Later calls return the first
// result regardless of sr.
func Init(sr int) error {
	initOnce.Do(func() {
		rate = beep.SampleRate(sr)
		if rate <= 0 {
			rate = DefaultSampleRate
		}
		if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
			initErr = fmt.Errorf("device: cannot open speaker: %w", err)
		}
	})
	return initErr
}

// Clip is a decoded audio file bound to the speaker.
// All mutable fields are guarded by the speaker lock, since the mixer
// goroutine reads them while streaming.
type Clip struct {
	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format

	ctrl   *beep.Ctrl
	volume *effects.Volume

	loop   bool
	level  float64
	muted  bool
	queued bool
	closed bool
}

// Load decodes path by extension (.mp3, .ogg, .wav).
// The file stays open until Close.
func Load(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("device: cannot open %s: %w", path, err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("device: unsupported audio format %q", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("device: cannot decode %s: %w", path, err)
	}

	c := &Clip{
		path:     path,
		streamer: streamer,
		format:   format,
		level:    1,
	}
	c.volume = &effects.Volume{Base: 2}
	c.ctrl = &beep.Ctrl{Streamer: c.volume}
	c.applyVolume()
	return c, nil
}

// Open loads path, falling back to an always-rejecting clip when the asset
// cannot be decoded so the caller can keep running without sound.
func Open(path string) (audio.Clip, error) {
	c, err := Load(path)
	if err != nil {
		return audio.Unavailable{Err: err}, err
	}
	return c, nil
}

// Play resumes the clip, queueing it on the mixer if it is not already there.
// The outcome is reported synchronously.
func (c *Clip) Play(done func(error)) {
	if err := Init(int(DefaultSampleRate)); err != nil {
		done(err)
		return
	}

	speaker.Lock()
	if c.closed {
		speaker.Unlock()
		done(fmt.Errorf("device: %s is closed", c.path))
		return
	}
	c.ctrl.Paused = false
	enqueue := !c.queued
	if enqueue {
		c.volume.Streamer = c.source()
		c.queued = true
	}
	speaker.Unlock()

	if enqueue {
		// The callback runs on the mixer goroutine with the speaker lock held.
		speaker.Play(beep.Seq(c.ctrl, beep.Callback(func() { c.queued = false })))
	}
	done(nil)
}

func (c *Clip) source() beep.Streamer {
	var s beep.Streamer = c.streamer
	if c.loop {
		s = beep.Loop(-1, c.streamer)
	}
	if c.format.SampleRate != rate {
		s = beep.Resample(resampleQuality, c.format.SampleRate, rate, s)
	}
	return s
}

func (c *Clip) Pause() {
	c.locked(func() { c.ctrl.Paused = true })
}

func (c *Clip) Rewind() error {
	var err error
	c.locked(func() {
		if !c.closed {
			err = c.streamer.Seek(0)
		}
	})
	return err
}

func (c *Clip) SetLoop(loop bool) {
	c.locked(func() { c.loop = loop })
}

func (c *Clip) SetMuted(muted bool) {
	c.locked(func() {
		c.muted = muted
		c.applyVolume()
	})
}

func (c *Clip) SetVolume(v float64) {
	c.locked(func() {
		c.level = v
		c.applyVolume()
	})
}

// Close detaches the clip from the mixer and releases the decoder.
func (c *Clip) Close() error {
	var already bool
	c.locked(func() {
		already = c.closed
		c.closed = true
		c.ctrl.Streamer = nil
	})
	if already {
		return nil
	}
	return c.streamer.Close()
}

// applyVolume maps a linear level in [0,1] onto the exponential volume
// effect. Callers hold the speaker lock.
func (c *Clip) applyVolume() {
	c.volume.Silent = c.muted || c.level <= 0
	if c.level > 0 {
		c.volume.Volume = math.Log2(c.level)
	}
}

// locked runs f under the speaker lock, which is usable before Init.
func (c *Clip) locked(f func()) {
	speaker.Lock()
	defer speaker.Unlock()
	f()
}
