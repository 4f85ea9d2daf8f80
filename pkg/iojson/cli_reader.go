package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned by FileReader.Read when no file was given and stdin
// is an interactive terminal.
var ErrNoInput = errors.New("no input provided (stdin is a terminal); use -f or pipe JSON")

// FileReader decodes a T from the file named by its --file flag, or from
// stdin when the flag is unset.
type FileReader[T any] struct {
	path string

	// Stdin overrides os.Stdin. When set it is never treated as a terminal.
	Stdin io.Reader
	// Validate, if set, runs after a successful decode.
	Validate func(T) error
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if not provided)",
		TakesFile:   true,
		Destination: &fr.path,
	}
}

// Read decodes a single JSON document. Unknown fields are rejected so typos in
// hand-written input files surface as errors.
func (fr *FileReader[T]) Read() (T, error) {
	var input T

	r, closer, err := fr.open()
	if err != nil {
		return input, err
	}
	defer closer()

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	if fr.Validate != nil {
		if err := fr.Validate(input); err != nil {
			return input, fmt.Errorf("invalid input: %w", err)
		}
	}
	return input, nil
}

func (fr *FileReader[T]) open() (io.Reader, func(), error) {
	if fr.path != "" {
		f, err := os.Open(fr.path)
		if err != nil {
			return nil, nil, fmt.Errorf("open file: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}

	if fr.Stdin != nil {
		return fr.Stdin, func() {}, nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil, ErrNoInput
	}
	return os.Stdin, func() {}, nil
}
