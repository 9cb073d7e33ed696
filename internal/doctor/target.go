package doctor

import (
	"context"
	"sync"

	"github.com/thoreinstein/passmenu/internal/config"
	"github.com/thoreinstein/passmenu/internal/paths"
)

// Target is the configuration file under examination. It loads the file
// at most once and shares the result between the checks that need it.
// A Target never creates or rewrites the file.
type Target struct {
	path   string
	loader *config.Loader

	once sync.Once
	res  *config.Result
	err  error
}

// NewTarget returns a Target for path, or the default location when path
// is empty. The options configure the loader; creating a missing file is
// always disabled.
func NewTarget(path string, opts ...config.Option) *Target {
	opts = append(opts, config.WithCreateMissing(false))
	return &Target{
		path:   paths.Resolve(path),
		loader: config.NewLoader(opts...),
	}
}

// Path returns the resolved file path.
func (t *Target) Path() string {
	return t.path
}

// Load loads and migrates the file in memory. Later calls return the first
// call's result.
func (t *Target) Load(ctx context.Context) (*config.Result, error) {
	t.once.Do(func() {
		t.res, t.err = t.loader.Load(ctx, t.path)
	})
	return t.res, t.err
}

// Standard returns a runner with every built-in check registered against t.
func Standard(t *Target) *Runner {
	return NewRunner(
		NewFileCheck(t.Path()),
		NewVersionCheck(t.Path(), nil),
		NewValidationCheck(t),
		NewGpgCheck(t),
		NewStoreCheck(t),
	)
}
