package physicians

import "net/http"

type EmptySearchMode string

const (
	// EmptySearchAll returns the directory (up to the limit) for a blank query.
	EmptySearchAll  EmptySearchMode = "all"
	EmptySearchNone EmptySearchMode = "none"
)

const (
	defaultRoutePath = "/api/physicians"
	defaultLimit     = 20
	defaultMaxLimit  = 100
)

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath       string
	SearchParam     string
	LimitParam      string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc

	Physicians []Physician
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       defaultRoutePath,
		SearchParam:     "q",
		LimitParam:      "limit",
		DefaultLimit:    defaultLimit,
		MaxLimit:        defaultMaxLimit,
		EmptySearchMode: EmptySearchAll,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = defaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = defaultMaxLimit
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = EmptySearchAll
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaultRoutePath
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	if opts.Physicians != nil {
		opts.Physicians = append([]Physician{}, opts.Physicians...)
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o != nil {
			o.RoutePath = path
		}
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		if o != nil {
			o.DefaultLimit = limit
		}
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		if o != nil {
			o.MaxLimit = limit
		}
	}
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) {
		if o != nil {
			o.EmptySearchMode = mode
		}
	}
}

// WithGuard runs guard before every request; a non-nil error rejects it.
func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o != nil {
			o.Guard = guard
		}
	}
}

// WithPhysicians replaces the embedded directory.
func WithPhysicians(list []Physician) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if list == nil {
			o.Physicians = nil
			return
		}
		o.Physicians = append([]Physician{}, list...)
	}
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if limit > opts.MaxLimit {
		limit = opts.MaxLimit
	}
	return limit
}
