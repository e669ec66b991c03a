package controllers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirm asks prompt on out/in and reports whether the user answered yes.
// Grounded on the "Are you sure you want to ... ?" confirmation gate
// _examples/gruntwork-io-terragrunt's run-all commands use before acting on
// a whole queue of units; MonPhare uses the same gate before cloning an
// entire organization's repositories.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
