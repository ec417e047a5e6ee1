package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"fileorg/internal/config"
)

var errNoAnswer = errors.New("no answer on standard input")

// prompter asks questions on the command's streams. Questions go to the
// error stream so silent mode can redirect standard output to the log file.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errNoAnswer
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ask prints question and returns the answer, or def when the answer is empty.
func (p *prompter) ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// confirm asks a yes/no question until it gets a recognizable answer.
func (p *prompter) confirm(question string, def bool) (bool, error) {
	hint := "yes/no"
	for {
		fmt.Fprintf(p.out, "%s (%s) [%s]: ", question, hint, yesNo(def))
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer yes or no.")
	}
}

var modeChoices = []struct {
	mode  string
	label string
}{
	{config.ModeContent, "By content"},
	{config.ModeDate, "By date"},
	{config.ModeType, "By type"},
}

// chooseMode offers the organization modes by number or name.
func (p *prompter) chooseMode(current string) (string, error) {
	fmt.Fprintln(p.out, "How would you like to organize your files?")
	def := "1"
	for i, choice := range modeChoices {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, choice.label)
		if choice.mode == current {
			def = fmt.Sprint(i + 1)
		}
	}
	for {
		answer, err := p.ask("Enter 1, 2 or 3", def)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		if config.ValidMode(answer) {
			return answer, nil
		}
		for i, choice := range modeChoices {
			if answer == fmt.Sprint(i+1) {
				return choice.mode, nil
			}
		}
		fmt.Fprintln(p.out, "Invalid selection.")
	}
}
