package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"diskmeta/internal/common"
)

// renderError writes err to w the way the CLI reports failures.
func renderError(w io.Writer, err error) {
	red := color.New(color.FgRed)
	switch {
	case common.IsFilesystemError(err):
		red.Fprintf(w, "ERROR: File system error %v\n", err)
	case errors.Is(err, common.ErrStoreUnavailable):
		red.Fprintf(w, "ERROR: Connect to store failed %v\n", err)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}
