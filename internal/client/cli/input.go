package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
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

// GetChoice prints a numbered list of options to w and reads the user's pick.
// The user may answer with either the number or the option text itself.
func GetChoice(reader *bufio.Reader, prompt string, options []string, w io.Writer) (string, error) {
	if len(options) == 0 {
		return "", errors.New("no options to choose from")
	}

	fmt.Fprintln(w, prompt)
	for i, opt := range options {
		fmt.Fprintf(w, "  %d) %s\n", i+1, opt)
	}

	answer, err := GetSimpleText(reader, "", w)
	if err != nil {
		return "", err
	}

	if n, convErr := strconv.Atoi(answer); convErr == nil {
		if n < 1 || n > len(options) {
			return "", fmt.Errorf("choice %d is out of range", n)
		}
		return options[n-1], nil
	}

	for _, opt := range options {
		if strings.EqualFold(opt, answer) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("%q is not one of the options", answer)
}
