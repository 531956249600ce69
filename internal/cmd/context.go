package cmd

import (
	"context"
	"io"

	"github.com/jimezsa/prepsite/internal/config"
	"github.com/jimezsa/prepsite/internal/ui"
	"github.com/rs/zerolog"
)

// Context is handed to every command. Ctx is cancelled on interrupt.
type Context struct {
	Ctx        context.Context
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
}
