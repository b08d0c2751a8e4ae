package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// terminalCallbacks は端末上でメッセージの表示と確認を行います
type terminalCallbacks struct {
	in  *bufio.Reader
	out io.Writer
	err io.Writer

	// interactive が false の場合、確認には最初の選択肢で答える
	interactive bool
	// assumeYes が true の場合、確認には最後の選択肢で答える
	assumeYes bool
}

func newTerminalCallbacks(in io.Reader, out, errOut io.Writer, interactive, assumeYes bool) *terminalCallbacks {
	return &terminalCallbacks{
		in:          bufio.NewReader(in),
		out:         out,
		err:         errOut,
		interactive: interactive,
		assumeYes:   assumeYes,
	}
}

func (c *terminalCallbacks) Message(title, text string) {
	fmt.Fprintf(c.out, "[%s]\n%s\n", title, text)
}

func (c *terminalCallbacks) Error(title, text string) {
	fmt.Fprintf(c.err, "[%s]\n%s\n", title, text)
}

// Prompt は選択肢を番号付きで表示し、番号か選択肢の名前で回答を受け付けます
func (c *terminalCallbacks) Prompt(title, text string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	fmt.Fprintf(c.out, "[%s]\n%s\n", title, text)
	switch {
	case c.assumeYes:
		answer := options[len(options)-1]
		fmt.Fprintf(c.out, "> %s (--yes)\n", answer)
		return answer
	case !c.interactive:
		fmt.Fprintf(c.out, "> %s (non-interactive)\n", options[0])
		return options[0]
	}

	for {
		for i, o := range options {
			fmt.Fprintf(c.out, "  %d) %s\n", i+1, o)
		}
		fmt.Fprint(c.out, "> ")
		line, err := c.in.ReadString('\n')
		if answer, ok := choose(strings.TrimSpace(line), options); ok {
			return answer
		}
		if err != nil {
			return options[0]
		}
	}
}

// choose は入力された番号か名前に一致する選択肢を返します
func choose(input string, options []string) (string, bool) {
	if input == "" {
		return "", false
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], true
	}
	for _, o := range options {
		if strings.EqualFold(o, input) {
			return o, true
		}
	}
	return "", false
}
