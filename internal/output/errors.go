package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmagro/allowcheck/internal/allowance"
)

type errorJSON struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RenderErrorJSON writes a failed check as indented JSON so scripted
// callers get a parseable body on stdout even when the run fails.
func RenderErrorJSON(w io.Writer, err error) error {
	payload := errorJSON{
		Error: errorBody{
			Kind:    string(allowance.KindOf(err)),
			Message: err.Error(),
		},
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// RenderErrorText writes a failed check in the human-readable form.
func RenderErrorText(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", red("✗ Error:"), err)
}
