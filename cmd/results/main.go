package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	resultsexport "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/export"
	resultsqueue "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/queue"
	tournamentservice "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/application"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var (
	tournamentFlag = &cli.StringFlag{Name: "tournament", Aliases: []string{"t"}, Usage: "tournament id", Required: true}
	actorFlag      = &cli.StringFlag{Name: "actor", Value: shared.SystemActorID, Usage: "actor id recorded in the audit log"}
	enqueueFlag    = &cli.BoolFlag{Name: "enqueue", Usage: "insert a background job instead of running inline"}
)

func main() {
	cliApp := &cli.App{
		Name:  "results",
		Usage: "operate the tournament results service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
			&cli.BoolFlag{Name: "verbose", Usage: "log at the configured level instead of warn"},
		},
		Commands: []*cli.Command{
			sweepCommand(),
			cancelUnconfirmedCommand(),
			completeCommand(),
			processCommand(),
			revertCommand(),
			rankingsCommand(),
			breakdownCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func uuidArg(c *cli.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.String(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return id, nil
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

type sweepReport struct {
	At          string            `yaml:"at"`
	Updated     int               `yaml:"updated"`
	Transitions []transitionEntry `yaml:"transitions,omitempty"`
	Errors      []string          `yaml:"errors,omitempty"`
}

type transitionEntry struct {
	TournamentID string                           `yaml:"tournament_id"`
	From         string                           `yaml:"from"`
	To           string                           `yaml:"to"`
	Cascade      *tournamentservice.CascadeResult `yaml:"cascade,omitempty"`
}

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "apply date-driven status transitions once",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "at", Usage: `evaluate as of this time (RFC3339 or e.g. "tomorrow 9am")`},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			at, err := parseAt(c.String("at"), shared.SystemClock{}.Now())
			if err != nil {
				return err
			}

			res, err := e.tournament.TournamentService.SweepAt(c.Context, at)
			if err != nil {
				return err
			}

			report := sweepReport{At: at.Format(time.RFC3339), Updated: res.UpdatedCount}
			for _, tr := range res.Transitions {
				report.Transitions = append(report.Transitions, transitionEntry{
					TournamentID: tr.TournamentID.String(),
					From:         tr.From.String(),
					To:           tr.To.String(),
					Cascade:      tr.Cascade,
				})
			}
			for _, err := range res.Errors {
				report.Errors = append(report.Errors, err.Error())
			}
			if err := printYAML(c.App.Writer, report); err != nil {
				return err
			}
			if res.ErrorCount() > 0 {
				return cli.Exit(fmt.Sprintf("%d tournament(s) failed", res.ErrorCount()), 1)
			}
			return nil
		}),
	}
}

func cancelUnconfirmedCommand() *cli.Command {
	return &cli.Command{
		Name:  "cancel-unconfirmed",
		Usage: "cancel unpaid registrations and their teams for one tournament",
		Flags: []cli.Flag{tournamentFlag, actorFlag},
		Action: withEnv(func(c *cli.Context, e *env) error {
			id, err := uuidArg(c, "tournament")
			if err != nil {
				return err
			}
			res, err := e.tournament.TournamentService.CancelUnconfirmedRegistrations(c.Context, id, c.String("actor"))
			if err != nil {
				return err
			}
			return printYAML(c.App.Writer, res)
		}),
	}
}

func completeCommand() *cli.Command {
	return &cli.Command{
		Name:  "complete",
		Usage: "mark an IN_PROGRESS tournament COMPLETED and process its results",
		Flags: []cli.Flag{tournamentFlag, actorFlag},
		Action: withEnv(func(c *cli.Context, e *env) error {
			id, err := uuidArg(c, "tournament")
			if err != nil {
				return err
			}
			res, err := e.results.ResultsService.CompleteTournament(c.Context, id, c.String("actor"))
			if err != nil {
				return err
			}
			return printYAML(c.App.Writer, res)
		}),
	}
}

func processCommand() *cli.Command {
	return &cli.Command{
		Name:  "process",
		Usage: "re-run the results pipeline for a COMPLETED tournament",
		Flags: []cli.Flag{tournamentFlag, enqueueFlag},
		Action: withEnv(func(c *cli.Context, e *env) error {
			id, err := uuidArg(c, "tournament")
			if err != nil {
				return err
			}
			if c.Bool("enqueue") {
				return enqueue(c, e, id, resultsqueue.ActionProcess)
			}
			res, err := e.results.ResultsService.ProcessCompletedTournament(c.Context, id)
			if err != nil {
				return err
			}
			return printYAML(c.App.Writer, res)
		}),
	}
}

func revertCommand() *cli.Command {
	return &cli.Command{
		Name: "revert",
		Usage: "reopen a COMPLETED tournament and remove its ranking contributions; " +
			"with --enqueue, only recalculate rankings for a tournament already reopened",
		Flags: []cli.Flag{tournamentFlag, actorFlag, enqueueFlag},
		Action: withEnv(func(c *cli.Context, e *env) error {
			id, err := uuidArg(c, "tournament")
			if err != nil {
				return err
			}
			if c.Bool("enqueue") {
				return enqueue(c, e, id, resultsqueue.ActionRevert)
			}
			res, err := e.results.ResultsService.RevertTournament(c.Context, id, c.String("actor"))
			if err != nil {
				return err
			}
			return printYAML(c.App.Writer, res)
		}),
	}
}

func rankingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "rankings",
		Usage: "season ranking maintenance",
		Subcommands: []*cli.Command{
			{
				Name:  "refresh",
				Usage: "recompute the rankings a COMPLETED tournament contributes to",
				Flags: []cli.Flag{tournamentFlag, enqueueFlag},
				Action: withEnv(func(c *cli.Context, e *env) error {
					id, err := uuidArg(c, "tournament")
					if err != nil {
						return err
					}
					if c.Bool("enqueue") {
						return enqueue(c, e, id, resultsqueue.ActionRankings)
					}
					if err := e.results.ResultsService.UpdatePlayerRankings(c.Context, id); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "rankings refreshed")
					return nil
				}),
			},
			{
				Name:  "export",
				Usage: "write a category's season standings to an XLSX file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "category id", Required: true},
					&cli.IntFlag{Name: "season", Usage: "season year", Required: true},
					&cli.PathFlag{Name: "out", Usage: "output file", Value: "rankings.xlsx"},
				},
				Action: withEnv(func(c *cli.Context, e *env) error {
					category, err := uuidArg(c, "category")
					if err != nil {
						return err
					}
					f, err := os.Create(c.Path("out"))
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", c.Path("out"), err)
					}
					n, err := resultsexport.ExportRankings(c.Context, e.db.ResultsDB, category, c.Int("season"), f)
					if cerr := f.Close(); err == nil {
						err = cerr
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "wrote %d rankings to %s\n", n, c.Path("out"))
					return nil
				}),
			},
		},
	}
}

func breakdownCommand() *cli.Command {
	return &cli.Command{
		Name:  "breakdown",
		Usage: "show how a player's points for a tournament are computed",
		Flags: []cli.Flag{
			tournamentFlag,
			&cli.StringFlag{Name: "player", Aliases: []string{"p"}, Usage: "player id", Required: true},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			tid, err := uuidArg(c, "tournament")
			if err != nil {
				return err
			}
			pid, err := uuidArg(c, "player")
			if err != nil {
				return err
			}
			b, err := e.results.ResultsService.PointsBreakdown(c.Context, tid, pid)
			if err != nil {
				return err
			}
			return printYAML(c.App.Writer, b)
		}),
	}
}

func enqueue(c *cli.Context, e *env, tournamentID uuid.UUID, action resultsqueue.Action) error {
	q, err := e.inserter(c.Context)
	if err != nil {
		return err
	}
	defer q.Stop(c.Context)

	jobID, inserted, err := resultsqueue.Enqueue(c.Context, q, tournamentID, action)
	if err != nil {
		return err
	}
	if !inserted {
		fmt.Fprintf(c.App.Writer, "%s job already pending as #%d\n", action, jobID)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "enqueued %s job #%d\n", action, jobID)
	return nil
}
