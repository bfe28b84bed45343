package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tscan/internal/trace"
)

// traceFlags mirrors the persistent --trace* flags.
type traceFlags struct {
	output    string
	level     trace.Level
	mode      trace.StorageMode
	format    trace.Format
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(flags *pflag.FlagSet) (traceFlags, error) {
	var (
		tf                  traceFlags
		level, mode, format string
		errs                [6]error
	)
	tf.output, errs[0] = flags.GetString("trace")
	level, errs[1] = flags.GetString("trace-level")
	mode, errs[2] = flags.GetString("trace-mode")
	format, errs[3] = flags.GetString("trace-format")
	tf.ringSize, errs[4] = flags.GetInt("trace-ring-size")
	tf.heartbeat, errs[5] = flags.GetDuration("trace-heartbeat")
	for _, err := range errs {
		if err != nil {
			return tf, fmt.Errorf("failed to read trace flags: %w", err)
		}
	}

	var err error
	if tf.level, err = trace.ParseLevel(level); err != nil {
		return tf, err
	}
	// --trace без уровня включает трассировку юнитов
	if tf.level == trace.LevelOff && tf.output != "" {
		tf.level = trace.LevelUnit
	}
	if tf.mode, err = trace.ParseMode(mode); err != nil {
		return tf, err
	}
	if tf.format, err = trace.ParseFormat(format); err != nil {
		return tf, err
	}
	tf.format = trace.FormatFor(tf.format, tf.output)
	return tf, nil
}

// setupTracing puts the tracer selected by the --trace* flags into the
// command context. The returned cleanup stops the heartbeat, dumps a ring and
// closes the output.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	if tf.level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(trace.Config{
		Level:      tf.level,
		Mode:       tf.mode,
		Format:     tf.format,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	beat := trace.StartHeartbeat(tracer, tf.heartbeat)

	stderr := cmd.ErrOrStderr()
	return func() {
		beat.Stop()
		// кольцо без потока никто не увидит, если его не выгрузить
		if ring, ok := tracer.(*trace.RingTracer); ok {
			traceErr(stderr, "dump", dumpRing(ring, tf.output, tf.format))
		}
		traceErr(stderr, "flush", tracer.Flush())
		traceErr(stderr, "close", tracer.Close())
	}, nil
}

func traceErr(w io.Writer, op string, err error) {
	if err != nil {
		fmt.Fprintf(w, "trace: %s error: %v\n", op, err)
	}
}

func dumpRing(ring *trace.RingTracer, path string, format trace.Format) error {
	if path == "" || path == "-" {
		return ring.Dump(os.Stderr, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ring.Dump(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
