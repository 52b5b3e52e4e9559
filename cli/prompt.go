package cli

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
)

// Prompter asks the user yes or no questions.
type Prompter interface {
	Confirm(question string) (bool, error)
}

type yesPrompter struct{}

func (yesPrompter) Confirm(string) (bool, error) { return true, nil }

type readlinePrompter struct {
	stdout io.Writer
}

// Confirm reads one line, anything starting with y or Y is a yes.
// Ctrl-C and end of input count as no.
func (p readlinePrompter) Confirm(question string) (bool, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: question + " (Y/N) ",
		Stdout: p.stdout,
	})
	if err != nil {
		return false, errors.Wrapf(err, "Failed to open prompt")
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return isYes(line), nil
}

func isYes(answer string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(answer)), "Y")
}
