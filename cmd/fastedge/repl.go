package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/fatih/color"
	"github.com/peterh/liner"

	"fastedge.dev"
)

const (
	prompt             = "fastedge> "
	continuationPrompt = "......... "
)

var (
	errorColor  = color.New(color.FgRed).SprintFunc()
	resultColor = color.New(color.FgCyan).SprintFunc()
	infoColor   = color.New(color.Faint).SprintFunc()
)

// repl evaluates guest code line by line in a single instance. If preload is set the script is
// run first, so its globals are available at the prompt.
func repl(ctx context.Context, rt *fastedge.Runtime, preload bool) error {
	i, err := rt.Instantiate()
	if err != nil {
		return err
	}
	defer i.Close()

	if preload {
		if _, err := i.Run(ctx); err != nil {
			fmt.Println(errorColor(err.Error()))
		}
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), ".fastedge_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println(infoColor("Type 'exit' or Ctrl+D to quit"))

	var input strings.Builder
	for {
		p := prompt
		if input.Len() > 0 {
			p = continuationPrompt
		}

		text, err := line.Prompt(p)
		if errors.Is(err, liner.ErrPromptAborted) {
			input.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(text)
		if input.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			return nil
		}
		if input.Len() == 0 && trimmed == "" {
			continue
		}

		if input.Len() > 0 {
			input.WriteString("\n")
		}
		input.WriteString(text)

		src := input.String()
		if _, err := goja.Parse("repl", src); err != nil && strings.Contains(err.Error(), "Unexpected end of input") {
			continue
		}
		input.Reset()
		line.AppendHistory(src)

		v, err := i.Eval(ctx, src)
		if err != nil {
			fmt.Println(errorColor(err.Error()))
			continue
		}
		if v != nil {
			fmt.Println(resultColor(fmt.Sprintf("%v", v)))
		}
	}
}
