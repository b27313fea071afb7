package asset

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrUnsupportedScheme = errors.New("resource: unsupported scheme")
	ErrFetchFailed       = errors.New("resource: could not fetch")
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// A Resource wraps a streamable local file or a remote http(s) resource.
//
// Every byte read from a resource is fed to a digest that is shared with all
// resources opened relative to it. After reading a scene and all of the files
// it references, the digest of the root resource identifies the scene sources.
type Resource struct {
	io.ReadCloser
	url    *url.URL
	digest *xxhash.Digest
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns the file name of this resource without any directory component.
func (r *Resource) Name() string {
	return path.Base(r.url.Path)
}

// Returns the lower-cased file extension of this resource including the dot.
func (r *Resource) Ext() string {
	return strings.ToLower(path.Ext(r.url.Path))
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Read from the underlying stream and update the digest.
func (r *Resource) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if n > 0 {
		_, _ = r.digest.Write(p[:n])
	}
	return n, err
}

// Get the digest of all bytes read so far from this resource and all
// resources opened relative to it.
func (r *Resource) Digest() uint64 {
	return r.digest.Sum64()
}

// Create a new Resource data stream. If relTo is specified and pathToResource
// is not an absolute path or url, the resource is located relative to the
// directory of relTo and shares its digest.
//
// The caller must close the returned resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	resURL, err := resolve(pathToResource, relTo)
	if err != nil {
		return nil, err
	}

	var reader io.ReadCloser
	switch resURL.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(resURL.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := httpClient.Get(resURL.String())
		if err != nil {
			return nil, fmt.Errorf("%w '%s': %s", ErrFetchFailed, resURL.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w '%s': status %d", ErrFetchFailed, resURL.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("%w '%s'", ErrUnsupportedScheme, resURL.Scheme)
	}

	digest := xxhash.New()
	if relTo != nil {
		digest = relTo.digest
	}

	return &Resource{
		ReadCloser: reader,
		url:        resURL,
		digest:     digest,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	resURL, err := url.Parse(filepath.ToSlash(name))
	if err != nil {
		resURL = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        resURL,
		digest:     xxhash.New(),
	}
}

func resolve(pathToResource string, relTo *Resource) (*url.URL, error) {
	// Windows paths are parsed as urls with forward slashes
	resURL, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	if resURL.Scheme != "" || relTo == nil || filepath.IsAbs(resURL.Path) {
		return resURL, nil
	}

	base := *relTo.url
	if base.Scheme == "" {
		dir, err := filepath.Abs(filepath.Dir(base.Path))
		if err != nil {
			return nil, fmt.Errorf("resource: could not detect abs path for %s: %w", base.String(), err)
		}
		return &url.URL{Path: filepath.Join(dir, resURL.Path)}, nil
	}

	base.Path = path.Join(path.Dir(base.Path), resURL.Path)
	base.RawQuery = ""
	return &base, nil
}
