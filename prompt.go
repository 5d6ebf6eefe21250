package huectl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// Prompter asks the operator for a line of input.
type Prompter interface {
	Prompt(ctx context.Context, message string) (string, error)
}

type lineResult struct {
	line string
	err  error
}

type consolePrompter struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan lineResult
}

// NewConsolePrompter reads answers line by line from in. A prompt blocked on
// input returns as soon as ctx is done.
func NewConsolePrompter(in io.Reader, out io.Writer) Prompter {
	return &consolePrompter{
		in:    in,
		out:   out,
		lines: make(chan lineResult),
	}
}

func (p *consolePrompter) Prompt(ctx context.Context, message string) (string, error) {
	p.once.Do(func() { go p.read() })

	fmt.Fprint(p.out, message)
	select {
	case result := <-p.lines:
		return result.line, result.err
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	}
}

func (p *consolePrompter) read() {
	scanner := bufio.NewScanner(p.in)
	for scanner.Scan() {
		p.lines <- lineResult{line: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	for {
		p.lines <- lineResult{err: err}
	}
}

// ScriptedPrompter answers prompts from a fixed list and returns io.EOF once
// it runs out. It records every prompt it was shown.
type ScriptedPrompter struct {
	Answers []string
	Prompts []string
}

func (p *ScriptedPrompter) Prompt(ctx context.Context, message string) (string, error) {
	p.Prompts = append(p.Prompts, message)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.Answers) == 0 {
		return "", io.EOF
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return answer, nil
}
