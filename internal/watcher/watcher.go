package watcher

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/Aman-CERP/dorindex/internal/repository/filerepo"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file was deleted or renamed away.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Kind classifies the changed file.
type Kind int

const (
	// KindRecord is a record JSON file under records/.
	KindRecord Kind = iota
	// KindSideFile is tags.yaml, releases.yaml or workflows.yaml.
	KindSideFile
	// KindConfig is the project .dorindex.yaml.
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindSideFile:
		return "side_file"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// ConfigFile is the project configuration file name watched next to the
// repository.
const ConfigFile = ".dorindex.yaml"

// Event represents one change to a repository file.
type Event struct {
	// Path is relative to the watched directory, slash-separated.
	Path      string
	Operation Operation
	Kind      Kind
	Timestamp time.Time
}

// Options configures the watcher.
type Options struct {
	// DebounceWindow is the quiet period before a batch is emitted.
	// Default: 500ms
	DebounceWindow time.Duration

	// PollInterval is the scan interval when fsnotify is unavailable.
	// Default: 5s
	PollInterval time.Duration

	// EventBufferSize is the number of batches buffered for the consumer.
	// Default: 16
	EventBufferSize int

	// ForcePolling disables fsnotify.
	ForcePolling bool
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  500 * time.Millisecond,
		PollInterval:    5 * time.Second,
		EventBufferSize: 16,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval == 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}

// classify reports whether rel names a repository file, and its kind.
func classify(rel string) (Kind, bool) {
	rel = filepath.ToSlash(rel)
	switch rel {
	case filerepo.TagsFile, filerepo.ReleasesFile, filerepo.WorkflowsFile:
		return KindSideFile, true
	case ConfigFile:
		return KindConfig, true
	}

	dir, name := pathSplit(rel)
	if dir == filerepo.RecordsDir && strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".") {
		return KindRecord, true
	}
	return 0, false
}

func pathSplit(rel string) (dir, name string) {
	i := strings.LastIndex(rel, "/")
	if i < 0 {
		return "", rel
	}
	return rel[:i], rel[i+1:]
}
