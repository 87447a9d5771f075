// Package cli implements the ringctl command tree.
package cli

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ringbuf "github.com/luhtfiimanal/go-ringbuf"
	"github.com/luhtfiimanal/go-ringbuf/internal/config"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

type app struct {
	configPath string
	file       string
	capacity   int64
	recordLen  int
	logLevel   string
	mmap       bool
	hex        bool
}

// NewRootCommand builds the ringctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ringctl",
		Short:         "Inspect and modify persistent ring buffer files",
		Long:          "ringctl operates on fixed-record-size circular buffer files: push, pop, peek, delete, resize and a bounded audit trail.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a YAML or JSON config file")
	pf.StringVarP(&a.file, "file", "f", "", "ring buffer file")
	pf.Int64VarP(&a.capacity, "capacity", "c", 0, "number of slots; open-or-create when set, otherwise reopen")
	pf.IntVarP(&a.recordLen, "record-length", "r", 0, "record length in bytes")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&a.mmap, "mmap", false, "access the file through a memory map")
	pf.BoolVar(&a.hex, "hex", false, "read and print records as hex")

	root.AddCommand(
		a.createCommand(),
		a.infoCommand(),
		a.pushCommand(),
		a.popCommand(),
		a.peekCommand(),
		a.deleteCommand(),
		a.resizeCommand(),
		a.logCommand(),
		a.tailCommand(),
	)
	return root
}

// settings merges config file, environment and flags; flags win.
func (a *app) settings(cmd *cobra.Command) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.File = a.file
	}
	if flags.Changed("capacity") {
		cfg.Capacity = a.capacity
	}
	if flags.Changed("record-length") {
		cfg.RecordLength = a.recordLen
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("mmap") {
		cfg.Mmap = a.mmap
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)
	return cfg, logger, nil
}

// withRing opens the configured ring, runs fn and closes the ring.
func (a *app) withRing(cmd *cobra.Command, fn func(*ringbuf.RingBuffer) error) (err error) {
	cfg, logger, err := a.settings(cmd)
	if err != nil {
		return err
	}
	rb, err := cfg.Open(logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rb.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if rb.Reinitialized() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s was incompatible and has been reinitialized\n", yellow("warning:"), rb.Path())
	}
	return fn(rb)
}

// parseRecord turns a command line argument into a record, zero padding text
// payloads to the record length.
func (a *app) parseRecord(arg string, recordLen int) ([]byte, error) {
	data := []byte(arg)
	if a.hex {
		var err error
		if data, err = hex.DecodeString(arg); err != nil {
			return nil, fmt.Errorf("decode hex record: %w", err)
		}
	}
	if len(data) > recordLen {
		return nil, fmt.Errorf("%w: %d bytes exceed record length %d", ringbuf.ErrRecordSizeMismatch, len(data), recordLen)
	}
	rec := make([]byte, recordLen)
	copy(rec, data)
	return rec, nil
}

func (a *app) formatRecord(rec []byte) string {
	if a.hex {
		return hex.EncodeToString(rec)
	}
	return string(bytes.TrimRight(rec, "\x00"))
}
