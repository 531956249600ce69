package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jimezsa/prepsite/internal/store"
)

type CacheCmd struct {
	List   CacheListCmd   `cmd:"" help:"List cached entries."`
	Get    CacheGetCmd    `cmd:"" help:"Print a cached value."`
	Put    CachePutCmd    `cmd:"" help:"Store a value."`
	Delete CacheDeleteCmd `cmd:"" help:"Remove a cached value."`
	Clear  CacheClearCmd  `cmd:"" help:"Remove cached entries."`
	Path   CachePathCmd   `cmd:"" help:"Print the cache file path."`
}

type CacheListCmd struct {
	Scope string `help:"Only this scope: local or session." enum:",local,session" default:""`
}

type CacheGetCmd struct {
	Key   string `arg:"" help:"Entry key."`
	Scope string `help:"Scope: local or session." enum:"local,session" default:"local"`
}

type CachePutCmd struct {
	Key   string `arg:"" help:"Entry key."`
	Value string `arg:"" optional:"" help:"Value, or - to read stdin."`
	File  string `help:"Read the value from a file."`
	Scope string `help:"Scope: local or session." enum:"local,session" default:"local"`
}

type CacheDeleteCmd struct {
	Key   string `arg:"" help:"Entry key."`
	Scope string `help:"Scope: local or session." enum:"local,session" default:"local"`
}

type CacheClearCmd struct {
	Session bool `help:"Clear only session entries."`
}

type CachePathCmd struct{}

func (c *CacheListCmd) Run(ctx *Context) error {
	var scope store.Scope
	if c.Scope != "" {
		parsed, err := store.ParseScope(c.Scope)
		if err != nil {
			return err
		}
		scope = parsed
	}
	return withStore(ctx, func(s *store.Store) error {
		entries, err := s.List(ctx.runContext(), scope)
		if err != nil {
			return err
		}
		if ctx.JSONOutput {
			if entries == nil {
				entries = []store.Entry{}
			}
			return writeJSON(ctx.Out, entries)
		}
		if len(entries) == 0 {
			ctx.UI.Infof("Cache is empty.")
			return nil
		}
		tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "scope\tkey\tbytes\tupdated")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Scope, e.Key, len(e.Value), e.UpdatedAt.Local().Format(time.DateTime))
		}
		return tw.Flush()
	})
}

func (c *CacheGetCmd) Run(ctx *Context) error {
	scope, err := store.ParseScope(c.Scope)
	if err != nil {
		return err
	}
	return withStore(ctx, func(s *store.Store) error {
		entry, err := s.Get(ctx.runContext(), scope, c.Key)
		if err != nil {
			return err
		}
		if ctx.JSONOutput {
			return writeJSON(ctx.Out, entry)
		}
		_, err = fmt.Fprintln(ctx.Out, entry.Value)
		return err
	})
}

func (c *CachePutCmd) Run(ctx *Context) error {
	scope, err := store.ParseScope(c.Scope)
	if err != nil {
		return err
	}

	var value []byte
	switch {
	case c.File != "":
		value, err = os.ReadFile(c.File)
	case c.Value == "-":
		value, err = io.ReadAll(ctx.In)
	default:
		value = []byte(c.Value)
	}
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(value)) == "" {
		return fmt.Errorf("value is required")
	}

	return withStore(ctx, func(s *store.Store) error {
		if err := s.Put(ctx.runContext(), scope, c.Key, value); err != nil {
			return err
		}
		ctx.UI.Successf("Stored %s/%s (%d bytes)", scope, c.Key, len(value))
		return nil
	})
}

func (c *CacheDeleteCmd) Run(ctx *Context) error {
	scope, err := store.ParseScope(c.Scope)
	if err != nil {
		return err
	}
	return withStore(ctx, func(s *store.Store) error {
		if err := s.Delete(ctx.runContext(), scope, c.Key); err != nil {
			return err
		}
		ctx.UI.Successf("Deleted %s/%s", scope, c.Key)
		return nil
	})
}

func (c *CacheClearCmd) Run(ctx *Context) error {
	var scope store.Scope
	if c.Session {
		scope = store.ScopeSession
	}
	return withStore(ctx, func(s *store.Store) error {
		n, err := s.Clear(ctx.runContext(), scope)
		if err != nil {
			return err
		}
		ctx.UI.Successf("Removed %d entries", n)
		return nil
	})
}

func (c *CachePathCmd) Run(ctx *Context) error {
	path, err := ctx.Config.ResolveCachePath()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.Out, path)
	return err
}

func withStore(ctx *Context, fn func(s *store.Store) error) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
