//go:build !js
// +build !js

package input

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/chzyer/readline"

	"rui/inter"
)

// Prompt reads lines from the terminal. It serves the REPL and, as an
// inter.Input, Read instructions once the supplied input queue is empty.
type Prompt struct {
	rl *readline.Instance
}

func NewPrompt(prompt string) (*Prompt, error) {
	return newPrompt(&readline.Config{Prompt: prompt})
}

func newPrompt(cfg *readline.Config) (*Prompt, error) {
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	return &Prompt{rl: rl}, nil
}

func (p *Prompt) ReadLine() (string, error) {
	return p.rl.Readline()
}

func (p *Prompt) SetPrompt(prompt string) {
	p.rl.SetPrompt(prompt)
}

// Next asks for a value until a valid one is entered. End of input and
// interrupts count as exhaustion.
func (p *Prompt) Next() (*big.Int, error) {
	for {
		line, err := p.rl.Readline()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", inter.ErrInputExhausted, err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := inter.ParseValue(line)
		if err != nil {
			fmt.Fprintln(p.rl.Stderr(), err)
			continue
		}
		return v, nil
	}
}

func (p *Prompt) Close() error {
	return p.rl.Close()
}

func SetInnerHtml(str_id, target string) error {
	return fmt.Errorf("cannot call this function under this build")
}
