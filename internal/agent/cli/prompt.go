package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Prompter читает ответы пользователя построчно из stdin команды.
//
// Если stdin - терминал, секреты читаются без эха; иначе (пайп, тесты)
// как обычная строка.
type Prompter struct {
	in  *bufio.Reader
	raw io.Reader
	out io.Writer
}

// NewPrompter создаёт Prompter над stdin/stderr команды.
func NewPrompter(cmd *cobra.Command) *Prompter {
	raw := cmd.InOrStdin()
	return &Prompter{
		in:  bufio.NewReader(raw),
		raw: raw,
		out: cmd.ErrOrStderr(),
	}
}

// Line выводит label и читает одну строку без перевода строки.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("unexpected end of input")
		}
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Secret читает строку без эха (через ReadSecret).
func (p *Prompter) Secret(label string) (string, error) {
	return ReadSecret(p, label)
}

func (p *Prompter) readSecret(label string) (string, error) {
	f, ok := p.raw.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Line(label)
	}

	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
