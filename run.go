// run.go contains the interface to os/exec with a mockable object.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type runner interface {
	run(string, ...string) error
}

// runCommand provides a simple and mockable interface to exec.Command().
type runCommand int

// run executes the named program, mirroring its stdout to the terminal
// and capturing stderr so failures carry the tool's own message.
func (x runCommand) run(name string, arg ...string) error {
	cmd := exec.Command(name, arg...)

	var stderr bytes.Buffer
	cmd.Stdout = os.Stdout
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", errToolNotFound, name)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %v: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %v", name, err)
	}
	return nil
}

// fakeRunCommand provides a runner for dry-run operations.
type fakeRunCommand int

// run just logs the command that would have been executed.
func (x fakeRunCommand) run(name string, args ...string) error {
	var quoted []string

	for _, a := range args {
		quoted = append(quoted, strconv.Quote(a))
	}
	log.Printf("%q %s", name, strings.Join(quoted, " "))
	return nil
}
