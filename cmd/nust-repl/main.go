// Command nust-repl is an interactive front-end over the compiler
// pipeline: it parses, type checks and lowers each snippet, then
// prints the assembly listing the compiler would emit. There is no
// evaluation; the instruction stream is the product.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/nust-lang/nust/internal/compiler"
	"github.com/nust-lang/nust/internal/parser"
	"github.com/nust-lang/nust/internal/types"
)

const (
	historyFile = ".nust_history"
	promptMain  = "==> "
	promptCont  = "... "
)

const banner = "Nust compiler REPL\nSnippets are compiled and disassembled, not run. Type :quit to exit."

const helpText = `
REPL commands:
  :help    Show this help
  :quit    Exit the REPL

Input starting with 'fn' is compiled as a whole program; anything
else is wrapped in 'fn main() { ... }'.
`

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, historyFile)
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Println(banner)

loop:
	for {
		input, ok := readSnippet(line)
		if !ok {
			break
		}

		switch trimmed := strings.TrimSpace(input); trimmed {
		case "":
		case ":quit":
			break loop
		case ":help":
			fmt.Print(helpText)
		default:
			line.AppendHistory(input)
			compileSnippet(trimmed)
		}
	}

	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
}

// readSnippet reads one brace-balanced snippet, prompting for
// continuation lines while braces stay open. It reports false on
// Ctrl+D or an aborted read.
func readSnippet(line *liner.State) (string, bool) {
	var buf strings.Builder
	prompt := promptMain

	for {
		text, err := line.Prompt(prompt)
		if err != nil {
			fmt.Println()
			return "", false
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(text)

		if braceDepth(buf.String()) <= 0 {
			return buf.String(), true
		}
		prompt = promptCont
	}
}

// braceDepth counts unclosed braces, skipping string literals and
// line comments the way the lexer does.
func braceDepth(s string) int {
	depth := 0
	inStr := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if inStr {
			switch c {
			case '\\':
				i++
			case '"':
				inStr = false
			}
			continue
		}

		switch c {
		case '"':
			inStr = true
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				for i < len(s) && s[i] != '\n' {
					i++
				}
			}
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}

func compileSnippet(input string) {
	source := input
	if !strings.HasPrefix(input, "fn") {
		source = fmt.Sprintf("fn main() {\n%s\n}", input)
	}

	program, err := parser.New(source).Parse()
	if err != nil {
		fmt.Println(red(err.Error()))
		return
	}

	var checkOutput bytes.Buffer
	checker := types.NewChecker()
	checker.SetErrorOutput(&checkOutput)
	if !checker.Check(program) {
		fmt.Print(red(checkOutput.String()))
		return
	}

	comp := compiler.New()
	instructions, err := comp.Compile(program)
	if err != nil {
		fmt.Println(red(err.Error()))
		return
	}

	table := comp.Functions()
	for i := 0; i < table.Len(); i++ {
		info, err := table.Get(i)
		if err != nil {
			fmt.Println(red(err.Error()))
			return
		}
		fmt.Println(green(fmt.Sprintf("; fn %s  entry=%d params=%d locals=%d",
			info.Name, info.EntryPoint, info.NumParams, info.NumLocals)))
	}

	for index, in := range instructions {
		fmt.Println(blue(fmt.Sprintf("%4d  %s", index, in)))
	}

	for index, s := range comp.StringConstants() {
		fmt.Println(green(fmt.Sprintf("; str %d: %q", index, s)))
	}
}
