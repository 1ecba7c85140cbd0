package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/toyz/receitas/pkg/axon"
)

var methodColors = map[string]*color.Color{
	"GET":    color.New(color.FgGreen, color.Bold),
	"POST":   color.New(color.FgYellow, color.Bold),
	"PUT":    color.New(color.FgBlue, color.Bold),
	"PATCH":  color.New(color.FgCyan, color.Bold),
	"DELETE": color.New(color.FgRed, color.Bold),
}

var (
	dim    = color.New(color.Faint)
	header = color.New(color.Bold, color.Underline)
)

// PrintRoutes writes the route table. Colors follow color.NoColor, which is
// set when the output is not a terminal or NO_COLOR is present.
func PrintRoutes(w io.Writer, routes []axon.RouteInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{
		header.Sprint("METHOD"), header.Sprint("PATH"), header.Sprint("HANDLER"),
		header.Sprint("ACCESS"), header.Sprint("BINDINGS"),
	}, "\t"))

	for _, route := range routes {
		method := route.Method
		if c, ok := methodColors[method]; ok {
			method = c.Sprint(method)
		}
		bindings := "-"
		if len(route.Bindings) > 0 {
			bindings = strings.Join(route.Bindings, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			method,
			route.Path,
			route.ControllerName+"."+route.HandlerName,
			accessColor(route.Access).Sprint(route.Access),
			dim.Sprint(bindings),
		)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d routes\n", len(routes))
}

func accessColor(access string) *color.Color {
	switch access {
	case "public":
		return color.New(color.FgGreen)
	case "authenticated":
		return color.New(color.FgYellow)
	}
	return color.New(color.FgMagenta)
}
