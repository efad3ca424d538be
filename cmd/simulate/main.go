// Command simulate drives a running solver through its REST API. For every
// level with a start node it opens a session, walks Indy through a local
// copy of the grid, applies each rotation the server commands and reports
// whether Indy reached the exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/crusade/game/engine"
)

var errNoStart = errors.New("level has no start node")

// Outcome is the result of walking one level
type Outcome struct {
	LevelID   string
	SessionID string
	Turns     int
	Commands  []string
	Escaped   bool
	// Reason explains why Indy did not escape
	Reason string
}

// Simulator moves Indy on a local grid and asks the server for each turn
type Simulator struct {
	client   *Client
	maxTurns int
	delay    time.Duration
	keep     bool
}

func (s *Simulator) Run(ctx context.Context, levelID string) (*Outcome, error) {
	info, err := s.client.CreateSession(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if !s.keep {
		defer func() {
			if err := s.client.DeleteSession(context.WithoutCancel(ctx), info.ID); err != nil {
				log.WithError(err).WithField("session", info.ID).Warn("failed to delete session")
			}
		}()
	}

	level := info.Level
	if level == nil || level.Start == nil {
		return nil, fmt.Errorf("%s: %w", levelID, errNoStart)
	}
	grid, err := engine.BuildGrid(level)
	if err != nil {
		return nil, err
	}

	out := &Outcome{LevelID: levelID, SessionID: info.ID}
	indy := *level.Start

	for out.Turns < s.maxTurns {
		res, err := s.client.PlayTurn(ctx, info.ID, indy, nil)
		if err != nil {
			return out, err
		}
		out.Turns++
		out.Commands = append(out.Commands, res.Command)

		log.WithFields(log.Fields{
			"level":   levelID,
			"turn":    out.Turns,
			"indy":    indy.String(),
			"command": res.Command,
		}).Debug("turn played")

		if !res.Decision.Wait {
			cell, ok := grid.Cell(res.Decision.Pos)
			if !ok || !cell.Rotate(res.Decision.Action) {
				out.Reason = fmt.Sprintf("turn %d: cannot rotate %s", out.Turns, res.Decision.Pos)
				return out, nil
			}
		}

		next, ok := grid.Advance(indy.Pos, indy.Entry)
		if !ok {
			out.Reason = fmt.Sprintf("turn %d: Indy crashed in %s", out.Turns, indy)
			return out, nil
		}
		if next.Pos.Y == level.Height {
			out.Escaped = next.Pos.X == level.ExitX
			if !out.Escaped {
				out.Reason = fmt.Sprintf("turn %d: Indy fell out at column %d", out.Turns, next.Pos.X)
			}
			return out, nil
		}
		indy = next

		if s.delay > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	out.Reason = fmt.Sprintf("gave up after %d turns", s.maxTurns)
	return out, nil
}

// RunAll simulates levelIDs in parallel, or every level with a start node
// when none are given. Outcomes keep the order of the levels.
func (s *Simulator) RunAll(ctx context.Context, levelIDs []string, parallel int) ([]*Outcome, error) {
	if len(levelIDs) == 0 {
		levels, err := s.client.ListLevels(ctx)
		if err != nil {
			return nil, err
		}
		for _, l := range levels {
			if l.HasStart {
				levelIDs = append(levelIDs, l.LevelID)
			}
		}
	}

	outcomes := make([]*Outcome, len(levelIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i, id := range levelIDs {
		g.Go(func() error {
			out, err := s.Run(gctx, id)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Walk Indy through levels against a running solver",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "Solver server URL",
				Sources: cli.EnvVars("CRUSADE_API_URL"),
			},
			&cli.StringSliceFlag{
				Name:  "level",
				Usage: "Level to simulate, repeatable (default: every level with a start node)",
			},
			&cli.IntFlag{
				Name:  "max-turns",
				Value: 500,
				Usage: "Maximum turns per level",
			},
			&cli.IntFlag{
				Name:  "parallel",
				Value: 4,
				Usage: "Levels simulated at once",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Delay between turns",
			},
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "Keep sessions on the server after the run",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log every turn",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			}

			sim := &Simulator{
				client:   NewClient(cmd.String("url")),
				maxTurns: int(cmd.Int("max-turns")),
				delay:    cmd.Duration("delay"),
				keep:     cmd.Bool("keep"),
			}
			outcomes, err := sim.RunAll(ctx, cmd.StringSlice("level"), int(cmd.Int("parallel")))
			if err != nil {
				return err
			}

			failed := 0
			for _, o := range outcomes {
				entry := log.WithFields(log.Fields{
					"level":   o.LevelID,
					"session": o.SessionID,
					"turns":   o.Turns,
				})
				if o.Escaped {
					entry.Info("🎉 Indy escaped")
					continue
				}
				failed++
				entry.WithField("reason", o.Reason).Warn("❌ Indy did not escape")
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d levels failed", failed, len(outcomes))
			}
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("simulation failed")
	}
}
