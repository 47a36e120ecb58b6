// Package logging routes the standard logger for the viewers, which own the
// terminal or window and cannot print to it.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// Setup discards all logging unless debug is set. With debug, output goes
// to path, or to stderr when path is empty. The returned file, if any, must
// be closed by the caller.
func Setup(debug bool, path string) (*log.Logger, *os.File, error) {
	if !debug {
		log.SetOutput(io.Discard)
		return log.New(io.Discard, "", 0), nil, nil
	}
	flags := log.LstdFlags | log.Lmicroseconds
	if path == "" {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
		return log.New(os.Stderr, "fluid: ", flags), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	log.SetOutput(f)
	log.SetFlags(flags)
	return log.New(f, "fluid: ", flags), f, nil
}
