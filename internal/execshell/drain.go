package execshell

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

const (
	lineFeedConstant       = '\n'
	carriageReturnConstant = "\r"
	lineJoinSeparator      = "\n"
)

// streamDrainer empties one process pipe until EOF, optionally echoing and
// keeping what it read.
type streamDrainer struct {
	mode       PrintInSequence
	saveOutput bool
	echo       io.Writer
}

func (drainer streamDrainer) drain(source io.Reader) (string, error) {
	if source == nil {
		return "", nil
	}
	switch drainer.mode {
	case PrintInSequenceLines:
		return drainer.drainLines(bufio.NewReader(source))
	case PrintInSequenceCharacters:
		return drainer.drainCharacters(bufio.NewReader(source))
	default:
		return drainer.drainSilently(source)
	}
}

func (drainer streamDrainer) drainSilently(source io.Reader) (string, error) {
	if !drainer.saveOutput {
		_, copyError := io.Copy(io.Discard, source)
		return "", normalizeDrainError(copyError)
	}
	content, readError := io.ReadAll(source)
	return string(content), normalizeDrainError(readError)
}

// drainLines echoes each line as soon as it is complete. A final line without a
// terminator is echoed without one. Saved lines are joined without a trailing newline.
func (drainer streamDrainer) drainLines(reader *bufio.Reader) (string, error) {
	var savedLines []string
	for {
		line, readError := reader.ReadString(lineFeedConstant)
		if len(line) > 0 || readError == nil {
			terminated := strings.HasSuffix(line, string(lineFeedConstant))
			line = strings.TrimSuffix(strings.TrimSuffix(line, string(lineFeedConstant)), carriageReturnConstant)
			if terminated {
				drainer.echoText(line + lineJoinSeparator)
			} else {
				drainer.echoText(line)
			}
			if drainer.saveOutput {
				savedLines = append(savedLines, line)
			}
		}
		if readError != nil {
			return strings.Join(savedLines, lineJoinSeparator), normalizeDrainError(readError)
		}
	}
}

func (drainer streamDrainer) drainCharacters(reader *bufio.Reader) (string, error) {
	var savedText strings.Builder
	encodedRune := make([]byte, utf8.UTFMax)
	for {
		character, _, readError := reader.ReadRune()
		if readError != nil {
			return savedText.String(), normalizeDrainError(readError)
		}
		encodedLength := utf8.EncodeRune(encodedRune, character)
		drainer.echoBytes(encodedRune[:encodedLength])
		if drainer.saveOutput {
			savedText.WriteRune(character)
		}
	}
}

func (drainer streamDrainer) echoText(text string) {
	drainer.echoBytes([]byte(text))
}

func (drainer streamDrainer) echoBytes(content []byte) {
	if drainer.echo == nil {
		return
	}
	_, _ = drainer.echo.Write(content)
}

// normalizeDrainError treats EOF and a pipe closed by process cleanup as the end of the stream.
func normalizeDrainError(drainError error) error {
	if drainError == nil || errors.Is(drainError, io.EOF) || errors.Is(drainError, os.ErrClosed) {
		return nil
	}
	return drainError
}
