package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogger configures the global logger: a console writer on stderr and,
// if filename is set, a plain JSON log file. The returned function flushes and
// closes the file.
func setupLogger(level, filename string) (func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}

	closer := func() {}
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file %q: %w", filename, err)
		}
		fw := bufio.NewWriter(f)
		writers = append(writers, fw)
		closer = func() {
			errFlush := fw.Flush()
			errClose := f.Close()
			if errFlush != nil || errClose != nil {
				fmt.Fprintf(os.Stderr, "cannot properly save log file %q\n", filename)
			}
		}
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	return closer, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
