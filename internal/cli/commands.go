package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ringbuf "github.com/luhtfiimanal/go-ringbuf"
	"github.com/luhtfiimanal/go-ringbuf/internal/audit"
)

func (a *app) createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create an empty ring buffer file, discarding any existing content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.settings(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("capacity") && cfg.Capacity == 0 {
				return errors.New("create requires --capacity")
			}
			rb, err := ringbuf.CreateWithOptions(cfg.File, cfg.Capacity, cfg.RecordLength, cfg.Options(logger))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d x %d bytes)\n", green("created"), rb.Path(), rb.Capacity(), rb.RecordLength())
			return rb.Close()
		},
	}
}

func (a *app) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show geometry and counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRing(cmd, func(rb *ringbuf.RingBuffer) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s %s\n", cyan("file:"), rb.Path())
				fmt.Fprintf(out, "%s %d\n", cyan("capacity:"), rb.Capacity())
				fmt.Fprintf(out, "%s %d\n", cyan("record length:"), rb.RecordLength())
				fmt.Fprintf(out, "%s %d\n", cyan("count:"), rb.Count())
				if rb.Count() > 0 {
					fmt.Fprintf(out, "%s %d\n", cyan("last:"), rb.Last())
				}
				return nil
			})
		},
	}
}

func (a *app) pushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push <record>...",
		Short: "Push records; text is zero padded to the record length",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRing(cmd, func(rb *ringbuf.RingBuffer) error {
				for _, arg := range args {
					rec, err := a.parseRecord(arg, rb.RecordLength())
					if err != nil {
						return err
					}
					if err := rb.Push(rec); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pushed %d, count %d\n", len(args), rb.Count())
				return nil
			})
		},
	}
}

func (a *app) popCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pop",
		Short: "Remove and print the newest record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRing(cmd, func(rb *ringbuf.RingBuffer) error {
				rec, err := rb.Pop()
				if err != nil {
					return err
				}
				if rec == nil {
					fmt.Fprintln(cmd.OutOrStdout(), yellow("(empty)"))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.formatRecord(rec))
				return nil
			})
		},
	}
}

func (a *app) peekCommand() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "peek",
		Short: "Print the newest records without removing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRing(cmd, func(rb *ringbuf.RingBuffer) error {
				recs, err := rb.PeekN(n)
				if err != nil {
					return err
				}
				if len(recs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), yellow("(empty)"))
				}
				for _, rec := range recs {
					fmt.Fprintln(cmd.OutOrStdout(), a.formatRecord(rec))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&n, "num", "n", 1, "number of records")
	return cmd
}

func (a *app) deleteCommand() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the newest records without printing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRing(cmd, func(rb *ringbuf.RingBuffer) error {
				before := rb.Count()
				if err := rb.DeleteN(n); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d, count %d\n", before-rb.Count(), rb.Count())
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&n, "num", "n", 1, "number of records")
	return cmd
}

func (a *app) resizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resize <capacity>",
		Short: "Change the number of slots, keeping the newest records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			capacity, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse capacity: %w", err)
			}
			return a.withRing(cmd, func(rb *ringbuf.RingBuffer) error {
				before := rb.Count()
				if err := rb.Resize(capacity); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "capacity %d, count %d", rb.Capacity(), rb.Count())
				if dropped := before - rb.Count(); dropped > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), " (%s)", yellow(fmt.Sprintf("dropped %d", dropped)))
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
}

func (a *app) logCommand() *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "log <message>",
		Short: "Append an audit event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logrus.ParseLevel(level)
			if err != nil {
				return err
			}
			return a.withRing(cmd, func(rb *ringbuf.RingBuffer) error {
				trail, err := audit.NewTrail(rb)
				if err != nil {
					return err
				}
				ev, err := trail.Append(lvl, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ev.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&level, "level", "info", "event level")
	return cmd
}

func (a *app) tailCommand() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the newest audit events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRing(cmd, func(rb *ringbuf.RingBuffer) error {
				trail, err := audit.NewTrail(rb)
				if err != nil {
					return err
				}
				evs, err := trail.Recent(n)
				if err != nil {
					return err
				}
				for _, ev := range evs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %-7s %s %s\n",
						cyan(ev.Time.Format(time.RFC3339Nano)), ev.Level, ev.ID, ev.Message)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&n, "num", "n", 10, "number of events")
	return cmd
}
