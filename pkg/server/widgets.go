package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/vango-dev/filters/pkg/schema"
)

// Result modes of a widget.
const (
	// ModeNavigate sends the browser to the commit URL.
	ModeNavigate = "navigate"

	// ModeFetch fetches the commit URL and pushes the body to the page.
	ModeFetch = "fetch"
)

// Widget is one filter form served at /f/{Name}.
type Widget struct {
	Name   string
	Title  string
	Schema *schema.Schema

	// Class is sent as the cls query parameter of every commit.
	Class string

	// Apply enables apply mode.
	Apply bool

	// Mode is ModeNavigate (default) or ModeFetch.
	Mode string

	// NavigateDelay overrides the default navigation delay.
	NavigateDelay time.Duration
}

func (w Widget) validate() error {
	if w.Name == "" {
		return errors.New("server: widget without name")
	}
	if w.Schema == nil {
		return fmt.Errorf("server: widget %q: no schema", w.Name)
	}
	switch w.Mode {
	case "", ModeNavigate:
	case ModeFetch:
		if w.Schema.BaseURL == "" {
			return fmt.Errorf("server: widget %q: fetch mode needs a schema baseUrl", w.Name)
		}
	default:
		return fmt.Errorf("server: widget %q: unknown mode %q", w.Name, w.Mode)
	}
	return nil
}
