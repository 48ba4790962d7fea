//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"html"
	"strings"
	"syscall/js"

	"rui/bytecode"
	"rui/input"
	"rui/inter"
)

// Browsers get no terminal and no signals, so runs are bounded instead.
const wasmMaxTicks = 1_000_000

// ruiRun(source, ascii, inputs[, elementId]) runs a program and returns
// {output, error}. When elementId is given the output is also rendered into
// that element.
func ruiRun(this js.Value, args []js.Value) any {
	result := map[string]any{"output": "", "error": ""}
	if len(args) < 1 {
		result["error"] = "ruiRun: missing program source"
		return result
	}
	source := args[0].String()
	mode := inter.Numeric
	if len(args) > 1 && args[1].Truthy() {
		mode = inter.Unicode
	}
	var fields []string
	if len(args) > 2 && args[2].Type() == js.TypeString {
		fields = strings.Fields(args[2].String())
	}

	program, err := bytecode.Parse(source)
	if err != nil {
		result["error"] = err.Error()
		return result
	}
	queue, err := inter.ParseQueue(fields)
	if err != nil {
		result["error"] = "input " + err.Error()
		return result
	}

	var out strings.Builder
	in := inter.NewInterpreter(program, inter.Options{
		Mode:     mode,
		Input:    queue,
		Output:   &out,
		MaxTicks: wasmMaxTicks,
	})
	if err := in.Run(context.Background()); err != nil {
		result["error"] = err.Error()
	}
	result["output"] = out.String()

	if len(args) > 3 && args[3].Type() == js.TypeString {
		rendered := "<pre>" + html.EscapeString(out.String()) + "</pre>"
		if err := input.SetInnerHtml(args[3].String(), rendered); err != nil && result["error"] == "" {
			result["error"] = err.Error()
		}
	}
	return result
}

func main() {
	js.Global().Set("ruiRun", js.FuncOf(ruiRun))
	select {}
}
