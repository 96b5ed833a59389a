package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
)

var errAborted = errors.New("aborted by user")

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func write(w io.Writer, args ...any) error {
	_, err := fmt.Fprint(w, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

// ask prints prompt and returns the trimmed reply line.
func ask(in io.Reader, out io.Writer, prompt string) (string, error) {
	if err := write(out, prompt); err != nil {
		return "", fmt.Errorf("print prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", errAborted
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question unless yes is already set.
func confirm(in io.Reader, out io.Writer, prompt string, yes bool) error {
	if yes {
		return nil
	}
	reply, err := ask(in, out, prompt+" [y/N]: ")
	if err != nil {
		return err
	}
	switch strings.ToLower(reply) {
	case "y", "yes":
		return nil
	default:
		return errAborted
	}
}

// confirmRemoteHost makes the operator retype host before touching a non-local database.
func confirmRemoteHost(in io.Reader, out io.Writer, action, host string) error {
	if err := writef(out, "\nWARNING: database host %q does not look local.\nThis will %s.\n", host, action); err != nil {
		return fmt.Errorf("print remote host warning: %w", err)
	}
	reply, err := ask(in, out, fmt.Sprintf("Type %q to continue: ", host))
	if err != nil {
		return err
	}
	if reply != host {
		return errAborted
	}
	return nil
}

func isLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	switch {
	case h == "", h == "localhost", strings.HasSuffix(h, ".local"):
		return false
	}
	if ip := net.ParseIP(h); ip != nil {
		return !ip.IsLoopback()
	}
	return true
}
