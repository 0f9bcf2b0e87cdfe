// Package repl runs the interactive query loop.
package repl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"query-intent-workers/internal/intent"
)

const (
	Prompt      = "Enter your query (or type 'exit' to quit): "
	ExitCommand = "exit"
	header      = "Generated JSON Output:"
)

// Submitter turns one query into records.
type Submitter interface {
	Submit(query string) (intent.QueryResult, error)
}

// Run reads queries from in line by line until exit, end of input or ctx is
// cancelled. Results and errors are written to out; a failed query never ends
// the loop.
func Run(ctx context.Context, in io.Reader, out io.Writer, s Submitter) error {
	scanner := bufio.NewScanner(in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := fmt.Fprint(out, Prompt); err != nil {
			return err
		}
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := scanner.Text()
		if strings.EqualFold(strings.TrimSpace(line), ExitCommand) {
			return nil
		}

		result, err := s.Submit(line)
		if err != nil {
			fmt.Fprintf(out, "Error: %s\n", err.Error())
			continue
		}

		if err := WriteResult(out, result); err != nil {
			return err
		}
	}
}

// WriteResult prints result as a 4-space indented JSON array under a header.
func WriteResult(w io.Writer, result intent.QueryResult) error {
	if result == nil {
		result = intent.QueryResult{}
	}

	if _, err := fmt.Fprintf(w, "\n%s\n", header); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}
