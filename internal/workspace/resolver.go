package workspace

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/devopsascode/bit/internal/jsoncdoc"
	"github.com/devopsascode/bit/internal/legacy"
	"github.com/devopsascode/bit/internal/logging"
	"github.com/devopsascode/bit/internal/vfile"
)

// InvalidConfigFileError means the modern config file exists but cannot be
// parsed. Fatal to the load; never retried.
type InvalidConfigFileError struct {
	Path string
	Err  error
}

func (e *InvalidConfigFileError) Error() string {
	return fmt.Sprintf("invalid workspace config file at %s: %v", e.Path, e.Err)
}

func (e *InvalidConfigFileError) Unwrap() error { return e.Err }

// Resolver detects which config format a directory holds and resolves it
// into a Config. The scaffold template and the persistence writer are
// injected so the resolver carries no ambient file-system dependencies
// beyond the workspace directory itself.
type Resolver struct {
	template []byte
	writer   vfile.Writer
	log      zerolog.Logger
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithTemplate replaces the embedded scaffold template.
func WithTemplate(template []byte) ResolverOption {
	return func(r *Resolver) { r.template = template }
}

// WithWriter replaces the persistence collaborator.
func WithWriter(w vfile.Writer) ResolverOption {
	return func(r *Resolver) { r.writer = w }
}

// WithLogger replaces the resolver's logger.
func WithLogger(log zerolog.Logger) ResolverOption {
	return func(r *Resolver) { r.log = log }
}

// NewResolver returns a resolver backed by the embedded template and the
// disk writer.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		template: DefaultTemplate(),
		writer:   vfile.DiskWriter{},
		log:      logging.Component("workspace"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadIfExist probes dir for a workspace config. The modern file wins when
// present; otherwise the legacy bridge is consulted. A directory with
// neither yields (nil, nil). A modern file that fails to parse yields an
// *InvalidConfigFileError.
func (r *Resolver) LoadIfExist(ctx context.Context, dir string) (*Config, error) {
	path := DefaultConfigPath(dir)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		doc, perr := jsoncdoc.Parse(data)
		if perr != nil {
			return nil, &InvalidConfigFileError{Path: path, Err: perr}
		}
		cfg, cerr := fromDocument(doc)
		if cerr != nil {
			return nil, &InvalidConfigFileError{Path: path, Err: cerr}
		}
		cfg.SetPath(path)
		r.log.Debug().Str("path", path).Msg("loaded workspace config")
		return cfg, nil
	case os.IsNotExist(err):
		lc, lerr := legacy.LoadIfExist(dir)
		if lerr != nil {
			return nil, lerr
		}
		if lc == nil {
			return nil, nil
		}
		r.log.Debug().Str("path", lc.Path()).Msg("wrapped legacy config")
		return FromLegacy(lc), nil
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
}

// Ensure returns the existing config of dir, or synthesizes a new one from
// the template merged with initProps. initProps fields win; untouched
// template fields keep their values, key order, and comments at every depth.
// The new config gets its destination path assigned but is not persisted;
// call Write for that.
func (r *Resolver) Ensure(ctx context.Context, dir string, initProps map[string]any) (*Config, error) {
	cfg, err := r.LoadIfExist(ctx, dir)
	if err != nil || cfg != nil {
		return cfg, err
	}
	doc, err := jsoncdoc.Parse(r.template)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workspace template: %w", err)
	}
	if err := doc.Merge(initProps); err != nil {
		return nil, err
	}
	cfg, err = fromDocument(doc)
	if err != nil {
		return nil, err
	}
	cfg.SetPath(DefaultConfigPath(dir))
	r.log.Debug().Str("path", cfg.Path()).Msg("created workspace config from template")
	return cfg, nil
}

// Write persists cfg through the resolver's writer. At most one file is
// written per call.
func (r *Resolver) Write(ctx context.Context, cfg *Config) error {
	return cfg.Write(ctx, r.writer)
}
