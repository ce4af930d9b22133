package cli

// Options is the fully-parsed configuration for a single invocation.
//
// It supports both:
// - mergetool-style positional args: <BASE> <LEFT> <RIGHT> [OUTPUT]
// - standalone flags: --base/--left/--right/--output
type Options struct {
	BasePath   string
	LeftPath   string
	RightPath  string
	OutputPath string

	ApplyAll string // left|right
	Check    bool

	Backup     bool
	Stage      bool
	ConfigPath string
	Verbose    bool
}

// HasPaths reports whether any document path was given.
func (o Options) HasPaths() bool {
	return o.BasePath != "" || o.LeftPath != "" || o.RightPath != "" || o.OutputPath != ""
}
