package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/torosent/variantbench/internal/config"
	"github.com/torosent/variantbench/internal/metrics"
)

// TimestampLayout names artifacts; it sorts lexically by time.
const TimestampLayout = "20060102_150405"

const lockFileName = ".variantbench.lock"

// EndpointRun is one tested endpoint's aggregate and raw outcomes.
type EndpointRun struct {
	Stats    metrics.EndpointStats
	Outcomes []metrics.Outcome
}

// Run is everything persisted for one invocation. A nil side was not tested.
type Run struct {
	Payload json.RawMessage
	Docker  *EndpointRun
	Zip     *EndpointRun
}

// Summary is the document written to the summary artifact.
type Summary struct {
	RunID         string      `json:"run_id" yaml:"run_id"`
	TestTimestamp string      `json:"test_timestamp" yaml:"test_timestamp"`
	TestPayload   interface{} `json:"test_payload" yaml:"test_payload"`
	DockerStats   interface{} `json:"docker_stats" yaml:"docker_stats"`
	ZipStats      interface{} `json:"zip_stats" yaml:"zip_stats"`
}

// Detailed is the document written to the detailed artifact.
type Detailed struct {
	RunID         string            `json:"run_id" yaml:"run_id"`
	TestTimestamp string            `json:"test_timestamp" yaml:"test_timestamp"`
	DockerResults []metrics.Outcome `json:"docker_results" yaml:"docker_results"`
	ZipResults    []metrics.Outcome `json:"zip_results" yaml:"zip_results"`
}

// Saved describes the artifacts written by Save.
type Saved struct {
	RunID        string
	Timestamp    string
	SummaryPath  string
	DetailedPath string
}

// Store writes run artifacts into a directory.
type Store struct {
	dir     string
	format  config.OutputFormat
	now     func() time.Time
	entropy io.Reader
}

type Option func(*Store)

// WithClock overrides the clock used for timestamps and run ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore validates format and creates dir if needed.
func NewStore(dir string, format config.OutputFormat, opts ...Option) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	switch format {
	case "":
		format = config.OutputFormatJSON
	case config.OutputFormatJSON, config.OutputFormatYAML:
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	s := &Store{
		dir:     dir,
		format:  format,
		now:     time.Now,
		entropy: ulid.DefaultEntropy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save writes the summary and detailed artifacts for run.
func (s *Store) Save(run Run) (Saved, error) {
	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		return Saved{}, fmt.Errorf("run id: %w", err)
	}
	saved := Saved{
		RunID:     id.String(),
		Timestamp: now.Format(TimestampLayout),
	}

	payload, err := decodePayload(run.Payload)
	if err != nil {
		return Saved{}, err
	}

	summary := Summary{
		RunID:         saved.RunID,
		TestTimestamp: saved.Timestamp,
		TestPayload:   payload,
		DockerStats:   statsOrEmpty(run.Docker),
		ZipStats:      statsOrEmpty(run.Zip),
	}
	detailed := Detailed{
		RunID:         saved.RunID,
		TestTimestamp: saved.Timestamp,
		DockerResults: outcomesOrEmpty(run.Docker),
		ZipResults:    outcomesOrEmpty(run.Zip),
	}

	saved.SummaryPath = filepath.Join(s.dir, fmt.Sprintf("performance_test_summary_%s.%s", saved.Timestamp, s.format))
	saved.DetailedPath = filepath.Join(s.dir, fmt.Sprintf("performance_test_detailed_%s.%s", saved.Timestamp, s.format))

	lock := flock.New(filepath.Join(s.dir, lockFileName))
	if err := lock.Lock(); err != nil {
		return Saved{}, fmt.Errorf("lock output dir: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	if err := s.writeDocument(saved.SummaryPath, summary); err != nil {
		return Saved{}, fmt.Errorf("write summary: %w", err)
	}
	if err := s.writeDocument(saved.DetailedPath, detailed); err != nil {
		return Saved{}, fmt.Errorf("write detailed results: %w", err)
	}
	return saved, nil
}

func (s *Store) encode(v interface{}) ([]byte, error) {
	if s.format == config.OutputFormatYAML {
		return yaml.Marshal(v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (s *Store) writeDocument(path string, v interface{}) error {
	data, err := s.encode(v)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// decodePayload turns the raw payload into a generic value so that both JSON
// and YAML render it as a document rather than bytes.
func decodePayload(raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.New("payload is not valid JSON")
	}
	return v, nil
}

func statsOrEmpty(r *EndpointRun) interface{} {
	if r == nil {
		return map[string]interface{}{}
	}
	return r.Stats
}

func outcomesOrEmpty(r *EndpointRun) []metrics.Outcome {
	if r == nil || r.Outcomes == nil {
		return []metrics.Outcome{}
	}
	return r.Outcomes
}
