// Package reader fetches CLI input text from a file or stdin
package reader

import (
	"io"
	"os"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/cockroachdb/errors"
)

// ReadInput reads the whole file, or stdin when fileName is empty. The text is returned as is;
// line handling is left to the operations.
func ReadInput(stdin io.Reader, fileName string) (string, error) {
	switch fileName {
	case "", "-":
		return readStdIn(stdin)
	default:
		return readFile(fileName)
	}
}

func readStdIn(stdin io.Reader) (string, error) {
	if stdin == nil {
		return "", apperr.IO(errors.New("no input"), "read stdin")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", apperr.IO(err, "read stdin")
	}
	return string(data), nil
}

func readFile(fileName string) (string, error) {
	info, err := os.Stat(fileName)
	if err != nil {
		return "", apperr.IO(err, "open file %q", fileName)
	}
	if info.IsDir() {
		return "", apperr.IO(errors.Newf("%q is a directory", fileName), "open file %q", fileName)
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		return "", apperr.IO(err, "read file %q", fileName)
	}
	return string(data), nil
}
