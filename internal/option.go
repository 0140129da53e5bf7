package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	watch  bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithWatch keeps the process alive after the first sync, re-running it
// whenever the Apple Books databases change.
func WithWatch(watch bool) Option {
	return func(a *application) {
		a.watch = watch
	}
}
