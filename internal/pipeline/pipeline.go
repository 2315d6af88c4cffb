// Package pipeline turns scanned log messages into task parameters.
// Each message is handled on its own: a failure is recorded and processing
// moves on to the next message.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/newhook/tasklog/internal/archive"
	"github.com/newhook/tasklog/internal/cachemanager"
	"github.com/newhook/tasklog/internal/logging"
	"github.com/newhook/tasklog/internal/logscan"
	"github.com/newhook/tasklog/internal/taskparam"
)

// Archiver persists parsed parameters. *archive.DB implements it.
type Archiver interface {
	SaveParameter(ctx context.Context, p *taskparam.Parameter, origin archive.Origin) (string, error)
}

// Parsed is a successfully created parameter and where it came from.
type Parsed struct {
	Message   logscan.Message
	Parameter *taskparam.Parameter
	// ArchiveID is set when the parameter was archived.
	ArchiveID string
}

// Failure records a message that could not be turned into a parameter.
type Failure struct {
	Message logscan.Message
	Err     error
}

func (f Failure) Error() string {
	return fmt.Sprintf("line %d: %v", f.Message.Line, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result holds everything produced from one batch of messages.
type Result struct {
	Parsed   []Parsed
	Failures []Failure
}

// Parameters returns the parsed parameters in message order.
func (r *Result) Parameters() []*taskparam.Parameter {
	params := make([]*taskparam.Parameter, 0, len(r.Parsed))
	for _, p := range r.Parsed {
		params = append(params, p.Parameter)
	}
	return params
}

// Config configures a Processor. Every field is optional.
type Config struct {
	Cache    cachemanager.CacheManager[string, *taskparam.Parameter]
	CacheTTL time.Duration
	Archive  Archiver
	// Source names the log being processed, for archive records.
	Source string
}

// Processor creates parameters from messages.
type Processor struct {
	cfg Config
}

// New creates a Processor.
func New(cfg Config) *Processor {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cachemanager.DefaultExpiration
	}
	return &Processor{cfg: cfg}
}

// Process handles messages in order. It stops early only when ctx is done,
// returning what was processed so far together with ctx.Err().
func (p *Processor) Process(ctx context.Context, messages []logscan.Message) (*Result, error) {
	result := &Result{}
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		param, err := p.create(ctx, msg)
		if err != nil {
			logging.Warn("failed to create task parameter", "line", msg.Line, "prefix", msg.Prefix, "error", err)
			result.Failures = append(result.Failures, Failure{Message: msg, Err: err})
			continue
		}

		parsed := Parsed{Message: msg, Parameter: param}
		if p.cfg.Archive != nil {
			id, err := p.cfg.Archive.SaveParameter(ctx, param, archive.Origin{
				Prefix: msg.Prefix,
				Source: p.cfg.Source,
				Line:   msg.Line,
			})
			if err != nil {
				logging.Error("failed to archive task parameter", "line", msg.Line, "name", param.Name, "error", err)
				result.Failures = append(result.Failures, Failure{Message: msg, Err: fmt.Errorf("archive: %w", err)})
			} else {
				parsed.ArchiveID = id
			}
		}
		result.Parsed = append(result.Parsed, parsed)
	}
	return result, nil
}

// create parses one message, consulting the cache first. Callers always get
// their own copy so no two results share items.
func (p *Processor) create(ctx context.Context, msg logscan.Message) (*taskparam.Parameter, error) {
	if p.cfg.Cache == nil {
		return taskparam.Create(msg.Text, msg.Prefix)
	}

	key := cacheKey(msg)
	// Hits extend the TTL so messages repeated across builds stay cached.
	if cached, ok := p.cfg.Cache.GetWithRefresh(ctx, key, p.cfg.CacheTTL); ok {
		logging.Debug("task parameter cache hit", "line", msg.Line, "name", cached.Name)
		return cached.Clone(), nil
	}

	param, err := taskparam.Create(msg.Text, msg.Prefix)
	if err != nil {
		return nil, err
	}
	p.cfg.Cache.Set(ctx, key, param.Clone(), p.cfg.CacheTTL)
	return param, nil
}

// Reset drops every cached parameter. Call it when the log being processed
// starts over, e.g. after the watched file was truncated or replaced.
func (p *Processor) Reset(ctx context.Context) error {
	if p.cfg.Cache == nil {
		return nil
	}
	if err := p.cfg.Cache.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}

func cacheKey(msg logscan.Message) string {
	h := sha256.New()
	h.Write([]byte(msg.Prefix))
	h.Write([]byte{0})
	h.Write([]byte(msg.Text))
	return hex.EncodeToString(h.Sum(nil))
}
