package commands

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrNonInteractive is returned when input is needed but stdin is not a terminal
var ErrNonInteractive = errors.New("input required in non-interactive mode")

// Prompter asks the user for missing input
type Prompter interface {
	Interactive() bool
	Password(label string) (string, error)
	Input(label string) (string, error)
	Select(label string, items []string) (int, error)
}

// TerminalPrompter reads from the controlling terminal
type TerminalPrompter struct{}

// NewTerminalPrompter creates a prompter bound to stdin
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

func (p *TerminalPrompter) Interactive() bool {
	return term.IsTerminal(int(syscall.Stdin))
}

func (p *TerminalPrompter) Password(label string) (string, error) {
	if !p.Interactive() {
		return "", ErrNonInteractive
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

func (p *TerminalPrompter) Input(label string) (string, error) {
	if !p.Interactive() {
		return "", ErrNonInteractive
	}

	prompt := promptui.Prompt{Label: label}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}
	return value, nil
}

func (p *TerminalPrompter) Select(label string, items []string) (int, error) {
	if !p.Interactive() {
		return 0, ErrNonInteractive
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("nothing to select")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("selection cancelled: %w", err)
	}
	return index, nil
}

// ask returns value when set, otherwise prompts for it
func ask(p Prompter, value, label, flag string) (string, error) {
	if value != "" {
		return value, nil
	}
	v, err := p.Input(label)
	if errors.Is(err, ErrNonInteractive) {
		return "", fmt.Errorf("%s is required (use --%s)", flag, flag)
	}
	return v, err
}
