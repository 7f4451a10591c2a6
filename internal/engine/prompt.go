package engine

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Prompter covers the run's two interactive moments: the operator
// verification pause before harvesting, and the pricing-anomaly retarget
// decision. Tests substitute a scripted implementation.
type Prompter interface {
	// Pause prints message and blocks until the operator presses enter.
	Pause(message string)

	// Confirm asks a yes/no question and returns the answer.
	Confirm(question string) bool
}

// StdinPrompter reads operator input from standard input.
type StdinPrompter struct{}

func (StdinPrompter) Pause(message string) {
	fmt.Println(message)
	fmt.Print("Press ENTER to continue...")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
}

func (StdinPrompter) Confirm(question string) bool {
	fmt.Printf("%s (y/n): ", question)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

// silentPrompter never pauses and always declines; used when no prompter is
// injected so non-interactive runs cannot hang on stdin.
type silentPrompter struct{}

func (silentPrompter) Pause(string) {}

func (silentPrompter) Confirm(string) bool { return false }
