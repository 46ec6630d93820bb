// repl (read eval print loop) adapts engine.Engine to the command line.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/pxsql/pxsql/cursor"
	"github.com/pxsql/pxsql/engine"
	"golang.org/x/term"
)

const (
	// emptyRowValue is printed when the cell in a row is NULL.
	emptyRowValue = "NULL"
	// emptyHeaderValue is printed when a column has no name.
	emptyHeaderValue = "<anonymous>"
	// prompt is the prompt.
	prompt = "pxsql> "
	// promptContinued is the prompt shown while waiting for a
	// terminating semicolon.
	promptContinued = "...> "
)

type repl struct {
	engine   *engine.Engine
	terminal *term.Terminal
}

// New returns a REPL running queries against eng.
func New(eng *engine.Engine) *repl {
	r := &repl{
		engine:   eng,
		terminal: term.NewTerminal(os.Stdin, prompt),
	}
	r.loadHistory()
	return r
}

func (r *repl) Run() {
	r.writeLn("Welcome to pxsql. Type .exit to exit")

	// Handling kill signals works under two methods for the REPL. When the
	// terminal is in raw mode the signals are caught by readline as bytes. When
	// the terminal is not in raw mode the signals are caught by the following
	// channel.
	//
	// The handling keeps in mind two major considerations: the terminal
	// history is written to, and a long-running query can always be shut
	// down.
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		r.exitGracefully()
	}()

	previousInput := ""
	for {
		line := r.readLine(previousInput)
		input := previousInput + line
		if len(input) == 0 {
			continue
		}
		if input[0] == '.' {
			if input == ".exit" {
				r.exitGracefully()
			}
			r.writeLn("Command not supported")
			continue
		}

		if !isTerminated(input) {
			previousInput = input + "\n"
			continue
		}
		previousInput = ""

		stmts, err := r.engine.Parse(input)
		if err != nil {
			r.writeLn("Err: " + err.Error())
			continue
		}
		for _, stmt := range stmts {
			start := time.Now()
			rs, err := r.engine.QueryStatement(context.Background(), stmt)
			if err != nil {
				r.writeLn("Err: " + err.Error())
				continue
			}
			header, rows, err := collectRows(rs)
			if err != nil {
				r.writeLn("Err: " + err.Error())
				continue
			}
			r.writeLn(r.printRows(header, rows))
			r.writeLn("Time: " + time.Since(start).String())
		}
	}
}

// isTerminated reports whether input ends with a (whitespace-trimmed)
// terminating semicolon.
func isTerminated(input string) bool {
	return strings.HasSuffix(strings.TrimSpace(input), ";")
}

func collectRows(rs *cursor.ResultSet) ([]string, [][]*string, error) {
	cols := rs.Metadata()
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	var rows [][]*string
	for {
		ok, err := rs.Next()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		row := make([]*string, len(cols))
		for i := range cols {
			s, err := rs.GetString(i)
			if err != nil {
				return nil, nil, err
			}
			if rs.WasNull() {
				row[i] = nil
				continue
			}
			row[i] = &s
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func (r *repl) readLine(previousInput string) string {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		panic(err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)
	if previousInput == "" {
		r.terminal.SetPrompt(prompt)
	} else {
		r.terminal.SetPrompt(promptContinued)
	}
	line, err := r.terminal.ReadLine()
	if err != nil {
		if err == io.EOF {
			term.Restore(int(os.Stdin.Fd()), oldState)
			r.exitGracefully()
		}
		panic("err reading line: " + err.Error())
	}
	return line
}

func (r *repl) writeLn(text string) {
	r.terminal.Write(([]byte)(text + "\n"))
}

func (r *repl) writeWarning(text string) {
	r.terminal.Write(r.terminal.Escape.Yellow)
	r.writeLn(text)
	r.terminal.Write(r.terminal.Escape.Reset)
}

// printRows renders a column-aligned ASCII table: a header row, a dashed
// divider sized to the widest cell in each column, then one line per row.
// An empty row set still prints the header, followed by "(0 rows)".
func (r *repl) printRows(columnNames []string, rows [][]*string) string {
	var out strings.Builder
	widths := columnWidths(columnNames, rows)
	out.WriteString(renderHeaderRow(columnNames, widths))
	out.WriteByte('\n')
	for _, row := range rows {
		out.WriteString(renderDataRow(row, widths))
		out.WriteByte('\n')
	}
	if len(rows) == 0 {
		out.WriteString("(0 rows)\n")
	}
	return out.String()
}

// columnWidths computes, per column, the longest rendered cell across the
// header and every data row, so every column can be padded uniformly.
func columnWidths(columnNames []string, rows [][]*string) []int {
	widths := make([]int, len(columnNames))
	for i, name := range columnNames {
		widths[i] = len(displayHeaderCell(name))
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := len(displayRowCell(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func displayHeaderCell(name string) string {
	if name == "" {
		return emptyHeaderValue
	}
	return name
}

func displayRowCell(cell *string) string {
	if cell == nil {
		return emptyRowValue
	}
	return *cell
}

// renderHeaderRow prints the padded column names followed by a
// "-----+-----" divider line matching their widths.
func renderHeaderRow(columnNames []string, widths []int) string {
	var line, divider strings.Builder
	for i, name := range columnNames {
		if i > 0 {
			line.WriteByte('|')
			divider.WriteByte('+')
		}
		fmt.Fprintf(&line, " %-*s ", widths[i], displayHeaderCell(name))
		divider.WriteString("-" + strings.Repeat("-", widths[i]) + "-")
	}
	return line.String() + "\n" + divider.String()
}

// renderDataRow prints one padded data row, NULL cells rendered as
// emptyRowValue.
func renderDataRow(row []*string, widths []int) string {
	var line strings.Builder
	for i, cell := range row {
		if i > 0 {
			line.WriteByte('|')
		}
		fmt.Fprintf(&line, " %-*s ", widths[i], displayRowCell(cell))
	}
	return line.String()
}

func (r *repl) exitGracefully() {
	r.saveHistory()
	os.Exit(0)
}

func (r *repl) loadHistory() {
	p, err := r.getHistoryPath()
	if err != nil {
		r.writeWarning("failed to get history path " + err.Error())
		return
	}
	contents, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		r.writeWarning("failed to load history " + err.Error())
		return
	}
	lines := strings.Split((string)(contents), "\n")
	slices.Reverse(lines)
	for _, line := range lines {
		if line == "" {
			continue
		}
		r.terminal.History.Add(line)
	}
}

func (r *repl) saveHistory() {
	history := []byte{}
	for i := range r.terminal.History.Len() {
		strEntry := r.terminal.History.At(i)
		byteEntry := ([]byte)(strEntry + "\n")
		history = append(history, byteEntry...)
	}
	p, err := r.getHistoryPath()
	if err != nil {
		r.writeWarning("failed to get history path for saving " + err.Error())
		return
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		r.writeWarning("failed to open history file for saving " + err.Error())
		return
	}
	defer f.Close()
	if err := f.Truncate(0); err != nil {
		r.writeWarning("failed to overwrite history " + err.Error())
		return
	}
	if _, err := f.Write(history); err != nil {
		r.writeWarning("failed to write history " + err.Error())
		return
	}
}

func (r *repl) getHistoryPath() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return dir + "/.pxsql_history", nil
}
