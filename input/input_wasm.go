//go:build js && wasm
// +build js,wasm

package input

import (
	"fmt"
	"syscall/js"
)

func SetInnerHtml(str_id, target string) error {
	document := js.Global().Get("document")
	element := document.Call("getElementById", str_id)
	if element.Truthy() {
		element.Set("innerHTML", target)
		return nil
	} else {
		return fmt.Errorf("cannot find specified element: \"%s\"", str_id)
	}
}
