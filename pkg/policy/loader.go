package policy

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	regoSuffix = ".rego"
	jsonSuffix = ".json"

	// reloadDebounce coalesces bursts of file events into one reload.
	reloadDebounce = 500 * time.Millisecond
)

// Loader reads technology adoption policies from scenario-provided files.
//
// Rego sources carry optional metadata directives in their leading comment
// block, before the package declaration:
//
//	# severity: error
//	# tags: adoption, scrap
//	# Blocks high-scrap technologies in scrap-short regions.
//	package steelpath.custom
//
// Remaining header comments become the policy description. JSON documents
// describe a Policy record directly. The loader also backs the
// --watch-policies reload path during a run.
type Loader struct {
	logger zerolog.Logger

	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	fingerprint [sha256.Size]byte
}

// NewLoader creates a policy loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{logger: logger.With().Str("component", "policy-loader").Logger()}
}

// LoadFromPaths reads every policy under the given files or directories.
// Directories are walked recursively for .rego and .json entries; a broken
// entry inside a directory is skipped with a warning, but a path named
// directly must load.
func (l *Loader) LoadFromPaths(ctx context.Context, paths []string) ([]Policy, error) {
	var policies []Policy
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat policy path %s: %w", path, err)
		}
		if !info.IsDir() {
			p, err := l.loadFile(path)
			if err != nil {
				return nil, err
			}
			policies = append(policies, *p)
			continue
		}
		fromDir, err := l.loadDir(path)
		if err != nil {
			return nil, err
		}
		policies = append(policies, fromDir...)
	}

	l.mu.Lock()
	l.fingerprint = fingerprintPolicies(policies)
	l.mu.Unlock()

	l.logger.Info().
		Int("policies", len(policies)).
		Int("sources", len(paths)).
		Msg("Policy files loaded")
	return policies, nil
}

// loadDir walks a directory for policy files. Malformed files are logged and
// skipped so one broken policy does not take down the rest of the set.
func (l *Loader) loadDir(dir string) ([]Policy, error) {
	var policies []Policy
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isPolicyFile(path) {
			return nil
		}
		p, err := l.loadFile(path)
		if err != nil {
			l.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable policy file")
			return nil
		}
		policies = append(policies, *p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk policy directory %s: %w", dir, err)
	}
	return policies, nil
}

// loadFile parses one policy file by extension.
func (l *Loader) loadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var p *Policy
	switch {
	case strings.HasSuffix(path, regoSuffix):
		p, err = parseRegoPolicy(path, string(data))
	case strings.HasSuffix(path, jsonSuffix):
		p, err = parseJSONPolicy(data)
	default:
		return nil, fmt.Errorf("unsupported policy file type: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Debug().Str("path", path).Str("policy", p.Name).Msg("Policy file parsed")
	return p, nil
}

// parseRegoPolicy builds a Policy from Rego source. The policy name comes
// from the file name; metadata comes from the header comment block. Custom
// rules must live under the steelpath package tree so their deny sets are
// addressable next to the builtin rules.
func parseRegoPolicy(path string, src string) (*Policy, error) {
	pkg := regoPackage(src)
	if pkg != "steelpath" && !strings.HasPrefix(pkg, "steelpath.") {
		return nil, fmt.Errorf("policy package %q must be steelpath or a steelpath subpackage", pkg)
	}

	header, err := parseRegoHeader(src)
	if err != nil {
		return nil, err
	}
	severity := header.severity
	if severity == "" {
		severity = SeverityWarning
	}

	now := time.Now()
	return &Policy{
		Name:        strings.TrimSuffix(filepath.Base(path), regoSuffix),
		Description: header.description,
		Rego:        src,
		Severity:    severity,
		Enabled:     true,
		Tags:        header.tags,
		Metadata:    map[string]interface{}{"source": path},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// parseJSONPolicy decodes a JSON policy record.
func parseJSONPolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode JSON policy: %w", err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("JSON policy is missing a name")
	}
	if p.Rego == "" {
		return nil, fmt.Errorf("JSON policy %q is missing rego source", p.Name)
	}
	if p.Severity == "" {
		p.Severity = SeverityWarning
	}
	if err := validateSeverity(p.Severity); err != nil {
		return nil, fmt.Errorf("JSON policy %q: %w", p.Name, err)
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	return &p, nil
}

type regoHeader struct {
	description string
	severity    Severity
	tags        []string
}

// parseRegoHeader reads the comment block above the package declaration.
// Lines of the form "# severity: error" and "# tags: a, b" are directives;
// everything else joins into the description.
func parseRegoHeader(src string) (regoHeader, error) {
	var h regoHeader
	var desc []string
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			break
		}
		comment := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		switch {
		case strings.HasPrefix(comment, "severity:"):
			sev := Severity(strings.TrimSpace(strings.TrimPrefix(comment, "severity:")))
			if err := validateSeverity(sev); err != nil {
				return h, err
			}
			h.severity = sev
		case strings.HasPrefix(comment, "tags:"):
			for _, tag := range strings.Split(strings.TrimPrefix(comment, "tags:"), ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					h.tags = append(h.tags, tag)
				}
			}
		case comment != "":
			desc = append(desc, comment)
		}
	}
	h.description = strings.Join(desc, " ")
	return h, nil
}

// regoPackage returns the declared package path of a Rego module.
func regoPackage(src string) string {
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "package ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "package "))
		}
	}
	return ""
}

func validateSeverity(s Severity) error {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError:
		return nil
	}
	return fmt.Errorf("unknown policy severity %q", s)
}

func isPolicyFile(name string) bool {
	return strings.HasSuffix(name, regoSuffix) || strings.HasSuffix(name, jsonSuffix)
}

// fingerprintPolicies hashes the loaded set so no-op file events (touch,
// editor swap files) do not force a policy recompile mid-run.
func fingerprintPolicies(policies []Policy) [sha256.Size]byte {
	h := sha256.New()
	for _, p := range policies {
		h.Write([]byte(p.Name))
		h.Write([]byte{0})
		h.Write([]byte(p.Rego))
		h.Write([]byte{0})
	}
	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Watch reloads policies through reloadFn whenever a watched file changes.
// Files named directly are watched via their parent directory, so editors
// that replace files on save do not drop the watch.
func (l *Loader) Watch(ctx context.Context, paths []string, reloadFn func([]Policy) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create policy watcher: %w", err)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			l.logger.Warn().Err(err).Str("path", path).Msg("Cannot watch policy path")
			continue
		}
		if !info.IsDir() {
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				l.logger.Warn().Err(err).Str("path", path).Msg("Cannot watch policy file")
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(p)
			}
			return nil
		})
		if err != nil {
			l.logger.Warn().Err(err).Str("path", path).Msg("Cannot watch policy directory")
		}
	}

	l.mu.Lock()
	l.watcher = watcher
	l.mu.Unlock()

	go l.watchLoop(ctx, watcher, paths, reloadFn)

	l.logger.Info().Int("paths", len(paths)).Msg("Watching policy paths")
	return nil
}

// watchLoop debounces file events and drives reloads until the context ends
// or the watcher closes.
func (l *Loader) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, paths []string, reloadFn func([]Policy) error) {
	defer func() { _ = watcher.Close() }()

	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isPolicyFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			l.logger.Debug().
				Str("file", event.Name).
				Str("op", event.Op.String()).
				Msg("Policy file changed")
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(reloadDebounce)

		case <-timer.C:
			if err := l.reload(ctx, paths, reloadFn); err != nil {
				l.logger.Error().Err(err).Msg("Policy reload failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			l.logger.Error().Err(err).Msg("Policy watcher error")
		}
	}
}

// reload re-reads the watched paths and applies the set when its content
// actually changed since the last load.
func (l *Loader) reload(ctx context.Context, paths []string, apply func([]Policy) error) error {
	l.mu.Lock()
	previous := l.fingerprint
	l.mu.Unlock()

	// LoadFromPaths records the new fingerprint.
	policies, err := l.LoadFromPaths(ctx, paths)
	if err != nil {
		return err
	}

	l.mu.Lock()
	unchanged := l.fingerprint == previous
	l.mu.Unlock()
	if unchanged {
		l.logger.Debug().Msg("Policy sources unchanged, skipping reload")
		return nil
	}

	if err := apply(policies); err != nil {
		return fmt.Errorf("failed to apply reloaded policies: %w", err)
	}
	l.logger.Info().Int("policies", len(policies)).Msg("Policies reloaded")
	return nil
}

// StopWatching closes the watcher and ends the watch loop.
func (l *Loader) StopWatching() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
