package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/sterilpoint/protokol/internal/models"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from
// reader. The trailing newline is trimmed. If EOF occurs after some input was
// read, the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a password prompt to w and reads a password from the
// user's terminal without echo. A newline is printed after the read to keep
// the UI tidy.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetInt reads one line and parses it as an integer. An empty line returns
// fallback.
func GetInt(reader *bufio.Reader, prompt string, fallback int, w io.Writer) (int, error) {
	text, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return fallback, nil
	}
	return strconv.Atoi(text)
}

// GetTools reads tool rows, one per line in "name, quantity" form, ending on
// an empty line. Count defaults to 1 when omitted.
func GetTools(reader *bufio.Reader, prompt string, w io.Writer) ([]models.Tool, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(one per line as name, quantity; empty line to finish)\n"); err != nil {
		return nil, err
	}

	var tools []models.Tool
	for {
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(strings.TrimRight(line, "\r\n"))
		if line == "" {
			break
		}
		tool, err := parseToolRow(line)
		if err != nil {
			fmt.Fprintf(w, "skipping %q: %v\n", line, err)
			continue
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

func parseToolRow(line string) (models.Tool, error) {
	name := line
	quantity := 1
	if i := strings.LastIndex(line, ","); i >= 0 {
		name = strings.TrimSpace(line[:i])
		q, err := strconv.Atoi(strings.TrimSpace(line[i+1:]))
		if err != nil {
			return models.Tool{}, fmt.Errorf("quantity is not a number")
		}
		quantity = q
	}
	if name == "" {
		return models.Tool{}, fmt.Errorf("name is empty")
	}
	return models.Tool{Name: name, Count: quantity}, nil
}

func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("index must be a non-negative integer")
	}
	return index, nil
}
