package audio

import (
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Prefs is the durable key/value medium holding the mute flag.
type Prefs interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

// Config holds playback policy.
type Config struct {
	MusicVolume    float64
	GameOverVolume float64
	RetryDelay     time.Duration
	MuteKey        string
}

// DefaultConfig returns the stock volumes and retry delay.
func DefaultConfig() Config {
	return Config{
		MusicVolume:    0.4,
		GameOverVolume: 0.6,
		RetryDelay:     100 * time.Millisecond,
		MuteKey:        "base-tetris-muted",
	}
}

// AfterFunc schedules f after d and returns a function that cancels it.
type AfterFunc func(d time.Duration, f func()) (cancel func())

func timeAfter(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Player is the audio subsystem. It exclusively owns the music and stinger
// clips and the shared mute flag.
//
// Every music command bumps a generation counter. Playback outcomes and
// retries carry the generation they were issued under and are dropped when
// it is stale, so a late retry can never restart music after Stop, GameOver
// or Close.
type Player struct {
	mu      sync.Mutex
	music   Clip
	stinger Clip
	prefs   Prefs
	cfg     Config
	after   AfterFunc
	logger  *log.Logger

	active  bool
	muted   bool
	playing bool
	gen     uint64
	cancel  func()
}

// Option configures a Player.
type Option func(*Player)

// WithAfterFunc replaces the timer used for retries.
func WithAfterFunc(f AfterFunc) Option {
	return func(p *Player) { p.after = f }
}

// New activates the subsystem: it configures both clips and restores the
// persisted mute flag. prefs may be nil, in which case mute is not persisted.
func New(music, stinger Clip, prefs Prefs, cfg Config, logger *log.Logger, opts ...Option) *Player {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	p := &Player{
		music:   music,
		stinger: stinger,
		prefs:   prefs,
		cfg:     cfg,
		after:   timeAfter,
		logger:  logger,
		active:  true,
	}
	for _, opt := range opts {
		opt(p)
	}

	music.SetLoop(true)
	music.SetVolume(clamp01(cfg.MusicVolume))
	stinger.SetLoop(false)
	stinger.SetVolume(clamp01(cfg.GameOverVolume))

	p.muted = p.loadMuted()
	music.SetMuted(p.muted)
	stinger.SetMuted(p.muted)

	return p
}

func (p *Player) loadMuted() bool {
	if p.prefs == nil || p.cfg.MuteKey == "" {
		return false
	}
	raw, ok, err := p.prefs.Get(p.cfg.MuteKey)
	if err != nil {
		p.logger.Warn("cannot read mute flag, defaulting to unmuted", "error", err)
		return false
	}
	if !ok {
		return false
	}
	muted, err := strconv.ParseBool(raw)
	if err != nil {
		p.logger.Warn("ignoring corrupt mute flag", "value", raw)
		return false
	}
	return muted
}

// invalidate starts a new generation and cancels any pending retry.
// Callers hold p.mu.
func (p *Player) invalidate() uint64 {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	return p.gen
}

// PlayMusic rewinds the music and starts it. A rejected start is retried
// once after the configured delay; a second rejection is logged and dropped.
func (p *Player) PlayMusic() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	gen := p.invalidate()
	p.mu.Unlock()

	if err := p.music.Rewind(); err != nil {
		p.logger.Warn("cannot rewind music", "error", err)
	}
	p.logger.Debug("starting music")
	p.music.Play(func(err error) { p.musicResult(gen, false, err) })
}

func (p *Player) musicResult(gen uint64, retried bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active || gen != p.gen {
		return
	}
	if err == nil {
		p.playing = true
		if retried {
			p.logger.Info("music started on retry")
		}
		return
	}
	if retried {
		p.logger.Error("music retry failed, giving up", "error", err)
		return
	}

	p.logger.Warn("music playback failed, retrying", "error", err, "delay", p.cfg.RetryDelay)
	p.cancel = p.after(p.cfg.RetryDelay, func() { p.retryMusic(gen) })
}

func (p *Player) retryMusic(gen uint64) {
	p.mu.Lock()
	if !p.active || gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.cancel = nil
	p.mu.Unlock()

	p.music.Play(func(err error) { p.musicResult(gen, true, err) })
}

// StopMusic pauses the music and rewinds it. Always succeeds.
func (p *Player) StopMusic() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.invalidate()
	p.playing = false
	p.mu.Unlock()

	p.music.Pause()
	if err := p.music.Rewind(); err != nil {
		p.logger.Warn("cannot rewind music", "error", err)
	}
	p.logger.Debug("music stopped")
}

// PlayGameOver pauses the music and plays the stinger once. A rejected
// stinger is logged and not retried.
func (p *Player) PlayGameOver() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.invalidate()
	p.playing = false
	p.mu.Unlock()

	p.music.Pause()
	if err := p.stinger.Rewind(); err != nil {
		p.logger.Warn("cannot rewind game over sound", "error", err)
	}
	p.stinger.Play(func(err error) {
		if err != nil {
			p.logger.Warn("game over sound failed", "error", err)
		}
	})
}

// ToggleMute flips the mute flag, applies it to both clips and persists it.
func (p *Player) ToggleMute() {
	p.mu.Lock()
	p.muted = !p.muted
	muted := p.muted
	p.mu.Unlock()

	p.music.SetMuted(muted)
	p.stinger.SetMuted(muted)

	if p.prefs == nil || p.cfg.MuteKey == "" {
		return
	}
	if err := p.prefs.Put(p.cfg.MuteKey, strconv.FormatBool(muted)); err != nil {
		p.logger.Warn("cannot persist mute flag", "error", err)
	}
}

// Muted reports the mute flag.
func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Playing reports whether the music is known to be playing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Close deactivates the subsystem: pending retries are abandoned, the music
// is stopped and both clips are released. Safe to call more than once.
func (p *Player) Close() error {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return nil
	}
	p.invalidate()
	p.active = false
	p.playing = false
	p.mu.Unlock()

	p.music.Pause()
	p.stinger.Pause()

	var firstErr error
	for _, c := range []Clip{p.music, p.stinger} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
