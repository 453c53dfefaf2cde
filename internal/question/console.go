package question

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ConsolePrompter reads answers from an interactive terminal. Options are
// shown 1-based to match how the portal numbers them; the returned index is
// 0-based (the conversion the resolver contract requires).
type ConsolePrompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewScanner(in), out: out}
}

func (p *ConsolePrompter) AskText(title string) (string, error) {
	fmt.Fprintf(p.out, "\n%s\n(empty answer skips the question)\n> ", title)
	return p.readLine()
}

func (p *ConsolePrompter) AskChoice(title string, options []string) (int, error) {
	fmt.Fprintf(p.out, "\n%s\n", title)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprintf(p.out, "> ")

	line, err := p.readLine()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		// Out of range on purpose; the resolver re-asks.
		return -1, nil
	}
	return n - 1, nil
}

func (p *ConsolePrompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.in.Text(), nil
}
