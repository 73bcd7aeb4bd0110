// Package images resolves editor image references into something the
// provider can consume: remote URLs pass through untouched, local upload
// URLs are inlined as base64 data URLs. Resolution fails open — an image
// that cannot be resolved is omitted, never fatal.
package images

import (
	"encoding/base64"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"blocksmith/internal/domain"
	"blocksmith/internal/infra"
)

// maxInlineBytes caps files eligible for base64 inlining.
const maxInlineBytes = 20 * 1024 * 1024

// Hosts and suffixes that mark a URL as local/development, invisible to
// the provider and therefore needing inlining.
var localHostSuffixes = []string{
	".local",
	".test",
	".example",
	".invalid",
	".localhost",
	".dev",
	".loca.lt",
	".ngrok.io",
}

var extensionMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Resolver maps local upload URLs onto their files beneath the upload
// root. Both fields empty disables inlining entirely; local images are
// then skipped.
type Resolver struct {
	baseURL string
	baseDir string
	logger  infra.Logger
}

func NewResolver(baseURL, baseDir string, logger infra.Logger) *Resolver {
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		baseDir: baseDir,
		logger:  logger,
	}
}

// ResolveAll resolves every reference it can and silently drops the rest.
func (r *Resolver) ResolveAll(refs []domain.ImageRef) []string {
	var out []string
	for _, ref := range refs {
		if resolved, ok := r.Resolve(ref); ok {
			out = append(out, resolved)
		}
	}
	return out
}

// Resolve returns a provider-usable URL for one reference: the original
// URL for remote images, a data URL for local ones.
func (r *Resolver) Resolve(ref domain.ImageRef) (string, bool) {
	raw := strings.TrimSpace(ref.URL)
	if raw == "" {
		return "", false
	}
	if !IsLocalURL(raw) {
		return raw, true
	}
	dataURL, ok := r.inline(raw)
	if !ok {
		r.logger.Warn().Str("url", raw).Msg("images: local image could not be inlined, skipping")
		return "", false
	}
	return dataURL, true
}

// inline reads a local upload and encodes it as a data URL. The file must
// live beneath the upload root; anything else is not embeddable.
func (r *Resolver) inline(rawURL string) (string, bool) {
	if r.baseURL == "" || r.baseDir == "" {
		return "", false
	}
	if !strings.HasPrefix(rawURL, r.baseURL+"/") {
		return "", false
	}
	relative := strings.TrimPrefix(rawURL, r.baseURL)
	if idx := strings.IndexAny(relative, "?#"); idx >= 0 {
		relative = relative[:idx]
	}
	path := filepath.Join(r.baseDir, filepath.FromSlash(relative))

	// Reject traversal out of the upload root.
	cleanRoot := filepath.Clean(r.baseDir)
	if path != cleanRoot && !strings.HasPrefix(path, cleanRoot+string(filepath.Separator)) {
		return "", false
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	if info.Size() > maxInlineBytes {
		r.logger.Warn().Str("path", path).Int64("bytes", info.Size()).Msg("images: file too large to inline")
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return "data:" + detectMIME(path, data) + ";base64," + base64.StdEncoding.EncodeToString(data), true
}

func detectMIME(path string, data []byte) string {
	if mime, ok := extensionMIME[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return "image/jpeg"
}

// IsLocalURL reports whether the URL's host is a loopback or private
// address, or carries a development domain suffix.
func IsLocalURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
	}
	lower := strings.ToLower(host)
	for _, suffix := range localHostSuffixes {
		if strings.HasSuffix(lower, suffix) || lower == strings.TrimPrefix(suffix, ".") {
			return true
		}
	}
	return false
}
