package protocol

import (
	"errors"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/crusade/game/engine"
)

// Play reads a level from r, then answers every turn on w until r is
// exhausted. An unsolvable level keeps answering WAIT, as does a turn whose
// player side cannot be decoded.
func Play(r io.Reader, w io.Writer, name string) error {
	reader := NewReader(r)
	level, err := reader.ReadLevel(name)
	if err != nil {
		return err
	}

	e, err := engine.NewEngine(level)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"width":  level.Width,
		"height": level.Height,
		"exit":   level.ExitX,
	}).Info("level loaded")

	for {
		in, err := reader.ReadTurn()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, ErrUnknownSide) {
			if err := WriteDecision(w, engine.Decision{Wait: true}); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		d, err := e.Turn(in)
		if err != nil && !errors.Is(err, engine.ErrNoPath) {
			return err
		}
		if err := WriteDecision(w, d); err != nil {
			return err
		}
	}
}
