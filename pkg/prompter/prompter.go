package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	// Input and Output are the prompt streams. Tests replace them.
	Input  io.Reader = os.Stdin
	Output io.Writer = os.Stdout

	reader *bufio.Reader
	source io.Reader
)

func lineReader() *bufio.Reader {
	if reader == nil || source != Input {
		reader = bufio.NewReader(Input)
		source = Input
	}
	return reader
}

func readLine() (string, error) {
	line, err := lineReader().ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	fmt.Fprint(Output, label)
	return readLine()
}

// PromptPassword prompts user for a password. Input is hidden when stdin is
// a terminal and read as a plain line otherwise.
func PromptPassword(label string) (string, error) {
	fmt.Fprint(Output, label)

	if f, ok := Input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytepw, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		fmt.Fprintln(Output) // New line after password input
		return string(bytepw), nil
	}
	return readLine()
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	fmt.Fprint(Output, label+" (y/n) ")
	input, err := readLine()
	if err != nil {
		return false, err
	}

	response := strings.ToLower(input)
	return response == "y" || response == "yes", nil
}
