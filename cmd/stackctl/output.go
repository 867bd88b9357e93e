package main

import (
	"fmt"
	"io"
)

func (a *app) printJSON(w io.Writer, v any) error {
	data, err := a.log.PrettyJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func checkOutputFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("unknown format: %s (use 'text' or 'json')", format)
}
