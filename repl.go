//go:build !js
// +build !js

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"rui/bytecode"
	"rui/config"
	"rui/input"
	"rui/inter"
)

const replHelp = `Enter program lines; each is checked as it is typed.
  /run [input...]  run the program entered so far
  /list            show the program with line numbers
  /undo            drop the last line
  /reset           start over
  /quit            leave
`

// session holds the program lines typed into the REPL.
type session struct {
	lines []string
}

func (s *session) add(text string) error {
	if _, err := bytecode.ParseLine(text, len(s.lines)+1); err != nil {
		return err
	}
	s.lines = append(s.lines, text)
	return nil
}

func (s *session) program() (bytecode.Program, error) {
	return bytecode.Parse(strings.Join(s.lines, "\n"))
}

func (s *session) listing() string {
	p, err := s.program()
	if err != nil {
		return err.Error() + "\n"
	}
	return p.Listing()
}

// command handles a meta command. It reports false when the session should
// end.
func (s *session) command(ctx context.Context, cmd string, settings *config.Run, stdout, stderr io.Writer, prompt *input.Prompt) bool {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case "/quit", "/exit":
		return false
	case "/help":
		fmt.Fprint(stdout, replHelp)
	case "/list":
		fmt.Fprint(stdout, s.listing())
	case "/undo":
		if len(s.lines) > 0 {
			s.lines = s.lines[:len(s.lines)-1]
		}
	case "/reset":
		s.lines = nil
	case "/run":
		run := *settings
		if len(fields) > 1 {
			run.Input = nil
			for _, arg := range fields[1:] {
				v, err := inter.ParseValue(arg)
				if err != nil {
					fmt.Fprintf(stderr, "input %v\n", err)
					return true
				}
				run.Input = append(run.Input, v)
			}
		}
		p, err := s.program()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return true
		}
		var fallback inter.Input
		if run.Prompt {
			prompt.SetPrompt("r> ")
			defer prompt.SetPrompt("?>>")
			fallback = prompt
		}
		if err := execute(ctx, p, &run, stdout, fallback); err != nil {
			fmt.Fprintln(stderr, err)
		}
		if run.Ascii {
			fmt.Fprintln(stdout)
		}
	default:
		fmt.Fprintf(stderr, "unknown command %s, try /help\n", fields[0])
	}
	return true
}

func repl(ctx context.Context, settings *config.Run, stdout, stderr io.Writer) int {
	prompt, err := input.NewPrompt("?>>")
	if err != nil {
		return fail(stderr, err)
	}
	defer prompt.Close()

	fmt.Fprint(stdout, "[Rui interactive session, /help for commands]\n")
	s := &session{}
	for {
		text, err := prompt.ReadLine()
		if err != nil { // io.EOF or interrupt
			return exitOK
		}
		cmd := strings.TrimSpace(text)
		if strings.HasPrefix(cmd, "/") {
			if !s.command(ctx, cmd, settings, stdout, stderr, prompt) {
				return exitOK
			}
			continue
		}
		if err := s.add(text); err != nil {
			fmt.Fprintln(stderr, err)
		}
	}
}
