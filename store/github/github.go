/*
Package github stores the entry list as a JSON file in a Git repository
through the GitHub contents API.

PURPOSE:
  Remote persistence. The whole list lives in one file (by default
  data/work-records.json). Every save is a commit on the configured branch,
  so the repository history doubles as the only long-term backup.

PROTOCOL:
  GET {base}/repos/{owner}/{repo}/contents/{path}?ref={branch}
    200: {"content": base64, "sha": version}
    404: file does not exist yet; treated as an empty list
  PUT {base}/repos/{owner}/{repo}/contents/{path}
    body: {"message", "content" (base64), "branch", "sha" (when file exists)}
    409/422: the sha is stale or missing; someone else wrote first

CLIENT:
  Requests go through go-github's RepositoriesService. Config.BaseURL
  replaces the API root, which is how tests and GitHub Enterprise hosts
  are reached.

OPTIMISTIC CONCURRENCY:
  The store remembers the sha of the last version it read or wrote and
  sends it with the next write. If the remote file moved on in between,
  the write fails with attendance.ErrConcurrentModification. There is no
  merge and no retry; the caller decides.

SEE ALSO:
  - attendance/store.go: Store contract
  - tracker/tracker.go: remote-first load with local fallback
*/
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v66/github"

	"github.com/warp/worklog/attendance"
)

const (
	DefaultBaseURL = "https://api.github.com"
	DefaultPath    = "data/work-records.json"
	DefaultBranch  = "main"
)

// Config names the file and the credentials used to reach it.
type Config struct {
	Owner   string
	Repo    string
	Path    string
	Branch  string
	Token   string
	BaseURL string
}

// Store implements attendance.Store against the contents API.
type Store struct {
	cfg        Config
	httpClient *http.Client
	client     *gh.Client
	now        func() time.Time

	mu  sync.Mutex
	sha string // last known version token, "" if the file does not exist
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient replaces the default client (15s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.httpClient = c }
}

// WithClock sets the clock used for commit messages.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a remote store. Path, Branch and BaseURL fall back to defaults.
func New(cfg Config, opts ...Option) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.Path = strings.Trim(cfg.Path, "/")

	s := &Store{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", cfg.BaseURL, err)
	}
	s.client = gh.NewClient(s.httpClient).WithAuthToken(cfg.Token)
	s.client.BaseURL = base
	return s, nil
}

// =============================================================================
// attendance.Store
// =============================================================================

// Load reads the file. A missing file is an empty list.
func (s *Store) Load(ctx context.Context) ([]attendance.Entry, error) {
	file, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sha = file.GetSHA()
	s.mu.Unlock()

	if file == nil {
		return []attendance.Entry{}, nil
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrMalformedData, err)
	}
	return attendance.DecodeEntries([]byte(content))
}

// Save writes the file as a new commit. If no version has been observed
// yet, the current one is fetched first.
func (s *Store) Save(ctx context.Context, entries []attendance.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sha == "" {
		file, err := s.fetch(ctx)
		if err != nil {
			return err
		}
		s.sha = file.GetSHA()
	}

	data, err := attendance.EncodeEntries(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	message := "Update work records - " + s.now().UTC().Format(time.RFC3339)
	branch := s.cfg.Branch
	opts := &gh.RepositoryContentFileOptions{
		Message: &message,
		Content: data,
		Branch:  &branch,
	}

	var (
		out  *gh.RepositoryContentResponse
		resp *gh.Response
	)
	if s.sha == "" {
		out, resp, err = s.client.Repositories.CreateFile(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Path, opts)
	} else {
		sha := s.sha
		opts.SHA = &sha
		out, resp, err = s.client.Repositories.UpdateFile(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Path, opts)
	}

	switch status := statusOf(resp); {
	case err == nil:
		s.sha = out.GetContent().GetSHA()
		return nil
	case status == http.StatusOK || status == http.StatusCreated:
		// The commit landed but the reply could not be read; force a
		// refetch on the next save.
		s.sha = ""
		return nil
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		s.sha = ""
		return fmt.Errorf("%w: %s", attendance.ErrConcurrentModification, errorMessage(err))
	default:
		return remoteError("write", status, err)
	}
}

// =============================================================================
// HTTP
// =============================================================================

// fetch returns the file, or nil when it does not exist.
func (s *Store) fetch(ctx context.Context) (*gh.RepositoryContent, error) {
	file, _, resp, err := s.client.Repositories.GetContents(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Path,
		&gh.RepositoryContentGetOptions{Ref: s.cfg.Branch})

	status := statusOf(resp)
	switch {
	case err == nil && file == nil:
		return nil, fmt.Errorf("%w: %s is a directory", attendance.ErrMalformedData, s.cfg.Path)
	case err == nil:
		return file, nil
	case status == http.StatusNotFound:
		return nil, nil
	case status == http.StatusOK:
		return nil, fmt.Errorf("%w: %v", attendance.ErrMalformedData, err)
	default:
		return nil, remoteError("read", status, err)
	}
}

func statusOf(resp *gh.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

// remoteError wraps transport failures (status 0) and unexpected statuses.
func remoteError(op string, status int, err error) error {
	if status == 0 {
		return fmt.Errorf("%w: %v", attendance.ErrRemoteUnavailable, err)
	}
	return &attendance.RemoteError{Op: op, Status: status, Body: errorMessage(err)}
}

func errorMessage(err error) string {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Message != "" {
		return errResp.Message
	}
	return err.Error()
}
