// Package audio owns the background track and the game-over stinger and keeps
// their playback in step with the session lifecycle.
package audio

import "errors"

// Clip is a loadable, playable, stoppable sound.
//
// Play is asynchronous from the caller's point of view: the outcome is
// delivered to done, which a backend may call before Play returns or later
// from another goroutine. A nil error means playback started.
type Clip interface {
	Play(done func(error))
	Pause()
	Rewind() error
	SetLoop(loop bool)
	SetMuted(muted bool)
	SetVolume(v float64)
	Close() error
}

// ErrUnavailable is reported by clips whose asset could not be loaded.
var ErrUnavailable = errors.New("audio: clip unavailable")

// Silent is a clip that accepts every command and produces no sound.
// Used where no output device exists, such as SSH sessions.
type Silent struct{}

func (Silent) Play(done func(error)) { done(nil) }
func (Silent) Pause()                {}
func (Silent) Rewind() error         { return nil }
func (Silent) SetLoop(bool)          {}
func (Silent) SetMuted(bool)         {}
func (Silent) SetVolume(float64)     {}
func (Silent) Close() error          { return nil }

// Unavailable is a clip whose asset failed to load. Every Play is rejected
// with the load error, so the player's retry and logging still apply.
type Unavailable struct {
	Err error
}

func (u Unavailable) Play(done func(error)) {
	if u.Err != nil {
		done(errors.Join(ErrUnavailable, u.Err))
		return
	}
	done(ErrUnavailable)
}
func (Unavailable) Pause()            {}
func (Unavailable) Rewind() error     { return nil }
func (Unavailable) SetLoop(bool)      {}
func (Unavailable) SetMuted(bool)     {}
func (Unavailable) SetVolume(float64) {}
func (Unavailable) Close() error      { return nil }
