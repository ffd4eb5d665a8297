package pipeline

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/sdkgen/errors"
)

// DefaultFormatCommand formats generated Dart files.
const DefaultFormatCommand = "dart format"

// ErrFormatterUnavailable is returned when the formatter binary is not on PATH.
var ErrFormatterUnavailable = errors.New("formatter not found on PATH")

// Formatter rewrites a generated file in place.
type Formatter interface {
	Format(ctx context.Context, path string) error
}

// CommandFormatter runs an external formatter with the file path appended.
type CommandFormatter struct {
	Command string
}

// Format implements Formatter.
func (f CommandFormatter) Format(ctx context.Context, path string) error {
	command := f.Command
	if command == "" {
		command = DefaultFormatCommand
	}
	words, err := shellquote.Split(command)
	if err != nil {
		return errors.Wrapf(err, "parse format command %q", command)
	}
	if len(words) == 0 {
		return errors.New("format command is empty")
	}
	if _, err := exec.LookPath(words[0]); err != nil {
		return errors.Wrapf(ErrFormatterUnavailable, "%s", words[0])
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, words[0], append(words[1:], path)...)
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return errors.WithDetail(errors.Wrapf(err, "%s %s", command, path), strings.TrimSpace(output.String()))
	}
	return nil
}
