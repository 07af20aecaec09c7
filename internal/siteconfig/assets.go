package siteconfig

import (
	"io/fs"
	"path"
	"strings"
)

// Resolution describes where a stylesheet reference points.
type Resolution struct {
	Ref string
	// Remote references (http, https, protocol relative) are never resolved.
	Remote bool
	Found  bool
	// Path is the matching file relative to the site root.
	Path string
	// Tried lists the candidate paths checked, in order.
	Tried []string
}

// DefaultAssetDirs mirror the generator's static and asset pipelines.
var DefaultAssetDirs = []string{"static", "assets"}

// ResolveAsset looks ref up under each asset directory. Query strings and
// fragments are ignored and a leading slash is treated as the site root of
// the published output, i.e. the asset directory itself.
func ResolveAsset(fsys fs.FS, assetDirs []string, ref string) Resolution {
	res := Resolution{Ref: ref}
	trimmed := strings.TrimSpace(ref)
	if IsRemote(trimmed) {
		res.Remote = true
		return res
	}
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	rel := path.Clean("/" + trimmed)[1:]
	if rel == "" {
		return res
	}

	if len(assetDirs) == 0 {
		assetDirs = DefaultAssetDirs
	}
	for _, dir := range assetDirs {
		dir = path.Clean(strings.TrimPrefix(strings.TrimSpace(dir), "./"))
		if dir == "" {
			continue
		}
		candidate := path.Join(dir, rel)
		res.Tried = append(res.Tried, candidate)
		if isFile(fsys, candidate) {
			res.Found = true
			res.Path = candidate
			return res
		}
	}
	return res
}

// IsRemote reports whether ref is an absolute URL rather than a site asset.
func IsRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//")
}

func isFile(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
