package main

//
// Printing the response
//

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ooni/torhttp/internal/model"
)

var (
	statusOK       = color.New(color.FgGreen, color.Bold)
	statusRedirect = color.New(color.FgYellow, color.Bold)
	statusError    = color.New(color.FgRed, color.Bold)
	headerName     = color.New(color.FgCyan)
)

// statusColor returns the color to print the given status code with.
func statusColor(code int) *color.Color {
	switch {
	case code < 300:
		return statusOK
	case code < 400:
		return statusRedirect
	default:
		return statusError
	}
}

// printResponse writes the status line, the headers and the body of
// resp to w, separating the headers from the body with an empty line.
func printResponse(w io.Writer, resp *model.Response) {
	statusColor(resp.StatusCode).Fprintf(w, "%s %d %s", resp.Version, resp.StatusCode, resp.Reason)
	fmt.Fprintln(w)
	for _, field := range resp.Header {
		fmt.Fprintf(w, "%s: %s\n", headerName.Sprint(field.Name), field.Value)
	}
	fmt.Fprintln(w)
	w.Write(resp.Body)
}
